package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-notedown/internal/artifacts"
	"github.com/goliatone/go-notedown/internal/jobs"
	"github.com/goliatone/go-notedown/internal/markdown"
	"github.com/goliatone/go-notedown/internal/scheduler"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

var workerNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

type flakyStore struct {
	interfaces.ArtifactStore
	failuresLeft int
	putCalls     int
}

func (s *flakyStore) Put(ctx context.Context, artifact interfaces.Artifact) error {
	s.putCalls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return errors.New("storage unavailable")
	}
	return s.ArtifactStore.Put(ctx, artifact)
}

func convertPayload(documentID string, version int64, blockList []any) map[string]any {
	return map[string]any{
		"document_id": documentID,
		"version":     version,
		"blocks":      blockList,
	}
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"type": "paragraph",
		"content": []any{
			map[string]any{"type": "text", "text": text},
		},
	}
}

func enqueueConvert(t *testing.T, sched interfaces.Scheduler, payload map[string]any) *interfaces.Job {
	t.Helper()
	documentID, _ := payload["document_id"].(string)
	version, _ := payload["version"].(int64)
	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:     scheduler.ConvertJobKey(documentID, version),
		Type:    scheduler.JobTypeNoteConvert,
		RunAt:   workerNow.Add(-time.Minute),
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return job
}

func newWorkerFixture(t *testing.T, store interfaces.ArtifactStore) (interfaces.Scheduler, *jobs.Worker, *jobs.InMemoryAuditRecorder) {
	t.Helper()
	sched := scheduler.NewInMemory(scheduler.WithClock(func() time.Time { return workerNow }))
	audit := jobs.NewInMemoryAuditRecorder()
	worker := jobs.NewWorker(sched, store, markdown.NewService(),
		jobs.WithClock(func() time.Time { return workerNow }),
		jobs.WithAuditRecorder(audit),
	)
	return sched, worker, audit
}

func TestWorkerConvertsDueJob(t *testing.T) {
	store := artifacts.NewInMemory()
	sched, worker, audit := newWorkerFixture(t, store)

	payload := convertPayload("doc-1", 3, []any{paragraphBlock("Hello")})
	payload["metadata"] = map[string]any{"title": "Meeting Notes"}
	job := enqueueConvert(t, sched, payload)

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, err := sched.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected completed job, got %s (%s)", stored.Status, stored.LastError)
	}

	artifact, err := store.Get(context.Background(), "doc-1", 3)
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	want := "---\ntitle: Meeting Notes\nslug: meeting-notes\n---\n\nHello\n\n"
	if artifact.Markdown != want {
		t.Fatalf("unexpected markdown\nwant %q\ngot  %q", want, artifact.Markdown)
	}
	if artifact.Checksum == "" || artifact.WarningCount != 0 {
		t.Fatalf("unexpected artifact bookkeeping %+v", artifact)
	}

	events := audit.Events()
	if len(events) != 1 || events[0].Action != "convert" || events[0].EntityID != "doc-1" {
		t.Fatalf("unexpected audit events %+v", events)
	}
}

func TestWorkerInvalidPayloadFailsPermanently(t *testing.T) {
	store := artifacts.NewInMemory()
	sched, worker, _ := newWorkerFixture(t, store)

	payload := convertPayload("doc-1", 1, []any{paragraphBlock("x")})
	delete(payload, "blocks")
	job := enqueueConvert(t, sched, payload)

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected permanent failure on first attempt, got %s", stored.Status)
	}
	if stored.Attempt != 1 {
		t.Fatalf("expected single attempt, got %d", stored.Attempt)
	}
	if _, err := store.Get(context.Background(), "doc-1", 1); !errors.Is(err, interfaces.ErrArtifactNotFound) {
		t.Fatalf("expected no artifact written, got %v", err)
	}
}

func TestWorkerMalformedDocumentFailsPermanently(t *testing.T) {
	store := artifacts.NewInMemory()
	sched, worker, _ := newWorkerFixture(t, store)

	job := enqueueConvert(t, sched, convertPayload("doc-1", 1, []any{"not a block"}))

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected permanent failure, got %s", stored.Status)
	}
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	store := &flakyStore{ArtifactStore: artifacts.NewInMemory(), failuresLeft: 1}
	sched, worker, _ := newWorkerFixture(t, store)

	job := enqueueConvert(t, sched, convertPayload("doc-1", 1, []any{paragraphBlock("Hello")}))

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("first process: %v", err)
	}
	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusPending {
		t.Fatalf("expected retry after transient failure, got %s", stored.Status)
	}

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("second process: %v", err)
	}
	stored, _ = sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected success on retry, got %s (%s)", stored.Status, stored.LastError)
	}
}

func TestWorkerSkipsUnchangedArtifact(t *testing.T) {
	store := &flakyStore{ArtifactStore: artifacts.NewInMemory()}
	sched, worker, _ := newWorkerFixture(t, store)

	payload := convertPayload("doc-1", 2, []any{paragraphBlock("Same body")})
	enqueueConvert(t, sched, payload)
	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if store.putCalls != 1 {
		t.Fatalf("expected one put, got %d", store.putCalls)
	}

	enqueueConvert(t, sched, payload)
	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if store.putCalls != 1 {
		t.Fatalf("expected unchanged artifact to skip persistence, got %d puts", store.putCalls)
	}
}

func TestWorkerCountsWarningsFromUnknownBlocks(t *testing.T) {
	store := artifacts.NewInMemory()
	sched, worker, _ := newWorkerFixture(t, store)

	job := enqueueConvert(t, sched, convertPayload("doc-1", 1, []any{
		paragraphBlock("kept"),
		map[string]any{"type": "drawing"},
	}))

	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected job to succeed despite unknown block, got %s", stored.Status)
	}
	artifact, err := store.Get(context.Background(), "doc-1", 1)
	if err != nil {
		t.Fatalf("get artifact: %v", err)
	}
	if artifact.WarningCount != 1 {
		t.Fatalf("expected one warning recorded, got %d", artifact.WarningCount)
	}
	if artifact.Markdown != "kept\n\n" {
		t.Fatalf("unexpected markdown %q", artifact.Markdown)
	}
}

func TestWorkerIgnoresUnknownJobTypes(t *testing.T) {
	store := artifacts.NewInMemory()
	sched, worker, _ := newWorkerFixture(t, store)

	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Type:  "notedown.other",
		RunAt: workerNow.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := worker.Process(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected unknown job type drained, got %s", stored.Status)
	}
}
