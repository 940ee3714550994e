package convertcmd

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-notedown/internal/commands"
	"github.com/goliatone/go-notedown/internal/jobs"
	"github.com/goliatone/go-notedown/internal/logging"
	"github.com/goliatone/go-notedown/internal/scheduler"
	"github.com/goliatone/go-notedown/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	enqueueOperation = "convert.enqueue"
	processOperation = "convert.process_due"
)

// ErrConversionDisabled is returned when the conversion feature flag is disabled at runtime.
var ErrConversionDisabled = errors.New("convert command: feature disabled")

var (
	_ command.Commander[EnqueueConvertCommand] = (*EnqueueConvertHandler)(nil)
	_ command.Commander[ProcessDueCommand]     = (*ProcessDueHandler)(nil)
)

// EnqueueConvertHandler schedules note conversion jobs via the shared command handler foundation.
type EnqueueConvertHandler struct {
	inner *commands.Handler[EnqueueConvertCommand]
}

// NewEnqueueConvertHandler creates a handler bound to the supplied scheduler.
func NewEnqueueConvertHandler(sched interfaces.Scheduler, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[EnqueueConvertCommand]) *EnqueueConvertHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg EnqueueConvertCommand) error {
		if !gates.conversionEnabled() {
			return ErrConversionDisabled
		}
		if sched == nil {
			return errors.New("convert command: scheduler is nil")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		runAt := msg.RunAt
		if runAt.IsZero() {
			runAt = time.Now()
		}
		payload := map[string]any{
			"document_id": msg.DocumentID,
			"version":     msg.Version,
			"blocks":      msg.Blocks,
		}
		if msg.Metadata != nil {
			payload["metadata"] = msg.Metadata
		}

		job, err := sched.Enqueue(ctx, interfaces.JobSpec{
			Key:     scheduler.ConvertJobKey(msg.DocumentID, msg.Version),
			Type:    scheduler.JobTypeNoteConvert,
			RunAt:   runAt,
			Payload: payload,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"job_id":      job.ID,
			"document_id": msg.DocumentID,
			"version":     msg.Version,
		}).Info("convert.command.enqueue.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[EnqueueConvertCommand]{
		commands.WithLogger[EnqueueConvertCommand](baseLogger),
		commands.WithOperation[EnqueueConvertCommand](enqueueOperation),
		commands.WithMessageFields(func(msg EnqueueConvertCommand) map[string]any {
			fields := map[string]any{
				"document_id": msg.DocumentID,
				"version":     msg.Version,
				"block_count": len(msg.Blocks),
			}
			if !msg.RunAt.IsZero() {
				fields["run_at"] = msg.RunAt
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[EnqueueConvertCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &EnqueueConvertHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[EnqueueConvertCommand].
func (h *EnqueueConvertHandler) Execute(ctx context.Context, msg EnqueueConvertCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ProcessDueHandler drains due conversion jobs via the shared command handler foundation.
type ProcessDueHandler struct {
	inner *commands.Handler[ProcessDueCommand]
}

// NewProcessDueHandler creates a handler bound to the supplied worker.
func NewProcessDueHandler(worker *jobs.Worker, logger interfaces.Logger, opts ...commands.HandlerOption[ProcessDueCommand]) *ProcessDueHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, _ ProcessDueCommand) error {
		if worker == nil {
			return errors.New("convert command: worker is nil")
		}
		return worker.Process(ctx)
	}

	handlerOpts := []commands.HandlerOption[ProcessDueCommand]{
		commands.WithLogger[ProcessDueCommand](baseLogger),
		commands.WithOperation[ProcessDueCommand](processOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[ProcessDueCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ProcessDueHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ProcessDueCommand].
func (h *ProcessDueHandler) Execute(ctx context.Context, msg ProcessDueCommand) error {
	return h.inner.Execute(ctx, msg)
}
