package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notedown/blocks"
	"github.com/goliatone/go-notedown/internal/identity"
	"github.com/goliatone/go-notedown/internal/logging"
	notedownscheduler "github.com/goliatone/go-notedown/internal/scheduler"
	"github.com/goliatone/go-notedown/internal/validation"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

// Worker drains due conversion jobs and persists the resulting artifacts.
type Worker struct {
	scheduler interfaces.Scheduler
	store     interfaces.ArtifactStore
	converter interfaces.Converter
	audit     AuditRecorder
	logger    interfaces.Logger
	now       func() time.Time
	batchSize int
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func NewWorker(scheduler interfaces.Scheduler, store interfaces.ArtifactStore, converter interfaces.Converter, opts ...Option) *Worker {
	w := &Worker{
		scheduler: scheduler,
		store:     store,
		converter: converter,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process drains one batch of due jobs. Individual job failures are reported
// to the scheduler and never abort the batch.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	due, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range due {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job, deadline); err != nil {
			logging.WithFields(w.logger, map[string]any{
				"job_id":   job.ID,
				"job_type": job.Type,
				"attempt":  job.Attempt,
			}).Error("jobs.process.failed", "error", err)
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job, now time.Time) error {
	switch job.Type {
	case notedownscheduler.JobTypeNoteConvert:
		return w.processConvert(ctx, job, now)
	default:
		return nil
	}
}

func (w *Worker) processConvert(ctx context.Context, job *interfaces.Job, now time.Time) error {
	if w.store == nil {
		return errors.New("jobs: artifact store is nil")
	}
	if w.converter == nil {
		return errors.New("jobs: converter is nil")
	}

	if err := validation.ValidateConvertPayload(job.Payload); err != nil {
		return permanentError(err, goerrors.CategoryValidation, "conversion payload rejected", convertInvalidPayloadCode)
	}

	documentID, _ := job.Payload["document_id"].(string)
	version, err := payloadVersion(job.Payload["version"])
	if err != nil {
		return permanentError(err, goerrors.CategoryValidation, "conversion payload rejected", convertInvalidPayloadCode)
	}

	rawBlocks, ok := job.Payload["blocks"].([]any)
	if !ok {
		return permanentError(fmt.Errorf("jobs: blocks payload is %T", job.Payload["blocks"]), goerrors.CategoryValidation, "conversion payload rejected", convertInvalidPayloadCode)
	}
	document, err := blocks.DecodeDocument(rawBlocks)
	if err != nil {
		return permanentError(err, goerrors.CategoryValidation, "conversion document malformed", convertMalformedDocumentCode)
	}

	var meta *blocks.Metadata
	if rawMeta, ok := job.Payload["metadata"].(map[string]any); ok {
		meta = blocks.DecodeMetadata(rawMeta)
	}

	logger := logging.WithConversionContext(w.logger, documentID, version)

	result, err := w.converter.Convert(ctx, interfaces.ConvertRequest{
		DocumentID: documentID,
		Version:    version,
		Blocks:     document,
		Metadata:   meta,
	})
	if err != nil {
		return transientError(err, "conversion failed")
	}

	checksum := contentChecksum(result.Markdown)
	if existing, err := w.store.Get(ctx, documentID, version); err == nil && existing != nil && existing.Checksum == checksum {
		logger.Debug("jobs.convert.unchanged", "checksum", checksum)
		return nil
	}

	artifact := interfaces.Artifact{
		ID:           identity.ArtifactUUID(documentID, version),
		DocumentID:   documentID,
		Version:      version,
		Markdown:     result.Markdown,
		Checksum:     checksum,
		WarningCount: len(result.Warnings),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := w.store.Put(ctx, artifact); err != nil {
		return transientError(err, "artifact persist failed")
	}

	w.recordAudit(ctx, AuditEvent{
		EntityType: "note",
		EntityID:   documentID,
		Action:     "convert",
		OccurredAt: now,
		Metadata: map[string]any{
			"job_id":        job.ID,
			"job_type":      job.Type,
			"attempt":       job.Attempt,
			"version":       version,
			"checksum":      checksum,
			"warning_count": len(result.Warnings),
		},
	})

	logger.Info("jobs.convert.completed",
		"checksum", checksum,
		"warning_count", len(result.Warnings),
	)
	return nil
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	_ = w.audit.Record(ctx, event)
}

func payloadVersion(raw any) (int64, error) {
	switch value := raw.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case float64:
		return int64(value), nil
	case json.Number:
		return value.Int64()
	default:
		return 0, fmt.Errorf("jobs: version payload is %T", raw)
	}
}

func contentChecksum(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}
