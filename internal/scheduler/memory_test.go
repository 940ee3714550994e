package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-notedown/internal/scheduler"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

func newTestScheduler(opts ...scheduler.Option) interfaces.Scheduler {
	counter := 0
	base := []scheduler.Option{
		scheduler.WithClock(func() time.Time {
			return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		}),
		scheduler.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("job-%d", counter)
		}),
	}
	return scheduler.NewInMemory(append(base, opts...)...)
}

func TestEnqueueRequiresRunAt(t *testing.T) {
	sched := newTestScheduler()
	if _, err := sched.Enqueue(context.Background(), interfaces.JobSpec{Type: scheduler.JobTypeNoteConvert}); err == nil {
		t.Fatal("expected missing run_at to be rejected")
	}
}

func TestEnqueueReplacesJobWithSameKey(t *testing.T) {
	sched := newTestScheduler()
	runAt := time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC)
	key := scheduler.ConvertJobKey("doc-1", 2)

	first, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: runAt,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	second, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:     key,
		Type:    scheduler.JobTypeNoteConvert,
		RunAt:   runAt,
		Payload: map[string]any{"document_id": "doc-1"},
	})
	if err != nil {
		t.Fatalf("enqueue replacement: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected replacement to mint a new job id")
	}

	if _, err := sched.Get(context.Background(), first.ID); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected replaced job gone, got %v", err)
	}
	byKey, err := sched.GetByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if byKey.ID != second.ID {
		t.Fatalf("expected key to resolve to replacement, got %s", byKey.ID)
	}

	due, err := sched.ListDue(context.Background(), runAt, 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected single due job, got %d", len(due))
	}
}

func TestListDueOrderingAndLimit(t *testing.T) {
	sched := newTestScheduler()
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
			Type:  scheduler.JobTypeNoteConvert,
			RunAt: base.Add(time.Duration(2-i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	due, err := sched.ListDue(context.Background(), base.Add(time.Hour), 2)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected limit applied, got %d jobs", len(due))
	}
	if due[0].RunAt.After(due[1].RunAt) {
		t.Fatalf("expected ascending run_at order, got %v then %v", due[0].RunAt, due[1].RunAt)
	}

	none, err := sched.ListDue(context.Background(), base.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("list due before window: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no jobs before window, got %d", len(none))
	}
}

func TestMarkDoneReleasesKey(t *testing.T) {
	sched := newTestScheduler()
	key := scheduler.ConvertJobKey("doc-2", 1)
	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := sched.MarkDone(context.Background(), job.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	stored, err := sched.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != interfaces.JobStatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
	if _, err := sched.GetByKey(context.Background(), key); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected key released, got %v", err)
	}
}

func TestMarkFailedRetriesUntilExhausted(t *testing.T) {
	sched := newTestScheduler(scheduler.WithDefaultMaxAttempts(2))
	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := sched.MarkFailed(context.Background(), job.ID, errors.New("boom")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusPending {
		t.Fatalf("expected retry after first failure, got %s", stored.Status)
	}
	if stored.Attempt != 1 || stored.LastError != "boom" {
		t.Fatalf("unexpected attempt bookkeeping %d %q", stored.Attempt, stored.LastError)
	}

	if err := sched.MarkFailed(context.Background(), job.ID, errors.New("boom again")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ = sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected terminal failure after max attempts, got %s", stored.Status)
	}
}

func TestMarkFailedPermanentShortCircuits(t *testing.T) {
	sched := newTestScheduler()
	key := scheduler.ConvertJobKey("doc-3", 1)
	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	failure := errors.Join(errors.New("payload rejected"), interfaces.ErrPermanent)
	if err := sched.MarkFailed(context.Background(), job.ID, failure); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ := sched.Get(context.Background(), job.ID)
	if stored.Status != interfaces.JobStatusFailed {
		t.Fatalf("expected permanent failure terminal on first attempt, got %s", stored.Status)
	}
	if _, err := sched.GetByKey(context.Background(), key); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected key released on permanent failure, got %v", err)
	}
}

func TestMarkFailedAppliesBackoff(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	sched := scheduler.NewInMemory(
		scheduler.WithClock(func() time.Time { return now }),
		scheduler.WithRetryBackoff(5*time.Minute),
	)
	job, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := sched.MarkFailed(context.Background(), job.ID, errors.New("transient")); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	stored, _ := sched.Get(context.Background(), job.ID)
	if !stored.RunAt.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expected backoff applied, got run_at %v", stored.RunAt)
	}

	due, err := sched.ListDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("expected backed-off job excluded from due set, got %d", len(due))
	}
}

func TestCancelByKey(t *testing.T) {
	sched := newTestScheduler()
	key := scheduler.ConvertJobKey("doc-4", 1)
	if _, err := sched.Enqueue(context.Background(), interfaces.JobSpec{
		Key:   key,
		Type:  scheduler.JobTypeNoteConvert,
		RunAt: time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := sched.CancelByKey(context.Background(), key); err != nil {
		t.Fatalf("cancel by key: %v", err)
	}
	if err := sched.CancelByKey(context.Background(), key); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("expected second cancel to miss, got %v", err)
	}
}
