package notedown_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	notedown "github.com/goliatone/go-notedown"
	"github.com/goliatone/go-notedown/pkg/interfaces"
	"github.com/goliatone/go-notedown/pkg/testsupport"
)

var moduleNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func newModule(t *testing.T, mutate func(*notedown.Config), opts ...notedown.Option) *notedown.Module {
	t.Helper()
	cfg := notedown.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	opts = append([]notedown.Option{notedown.WithClock(func() time.Time { return moduleNow })}, opts...)
	module, err := notedown.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"type": "paragraph",
		"content": []any{
			map[string]any{"type": "text", "text": text},
		},
	}
}

func sampleMutation(documentID string, version int64) notedown.NoteMutation {
	return notedown.NoteMutation{
		DocumentID: documentID,
		Version:    version,
		Blocks: []any{
			map[string]any{
				"type":  "heading",
				"attrs": map[string]any{"level": int64(2)},
				"content": []any{
					map[string]any{"type": "text", "text": "Agenda"},
				},
			},
			paragraphBlock("Review the launch plan."),
		},
		Metadata: map[string]any{
			"title": "Meeting Notes",
			"tags":  []any{"work", "meetings"},
		},
		RunAt: moduleNow.Add(-time.Minute),
	}
}

func TestModuleEnqueueAndProcess(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	if err := module.EnqueueNoteMutation(ctx, sampleMutation("doc-1", 3)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := module.ProcessDue(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	artifact, err := module.Artifact(ctx, "doc-1", 3)
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	want := "---\n" +
		"title: Meeting Notes\n" +
		"slug: meeting-notes\n" +
		"tags: [work, meetings]\n" +
		"---\n" +
		"\n" +
		"## Agenda\n" +
		"\n" +
		"Review the launch plan.\n" +
		"\n"
	if artifact.Markdown != want {
		t.Fatalf("unexpected markdown\nwant %q\ngot  %q", want, artifact.Markdown)
	}

	latest, err := module.LatestArtifact(ctx, "doc-1")
	if err != nil {
		t.Fatalf("latest artifact: %v", err)
	}
	if latest.Version != 3 {
		t.Fatalf("unexpected latest version %d", latest.Version)
	}
}

func TestModuleReplacesPendingJobForSameVersion(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	first := sampleMutation("doc-1", 1)
	first.Blocks = []any{paragraphBlock("Old body")}
	first.Metadata = nil
	if err := module.EnqueueNoteMutation(ctx, first); err != nil {
		t.Fatalf("enqueue first: %v", err)
	}

	second := sampleMutation("doc-1", 1)
	second.Blocks = []any{paragraphBlock("New body")}
	second.Metadata = nil
	if err := module.EnqueueNoteMutation(ctx, second); err != nil {
		t.Fatalf("enqueue second: %v", err)
	}

	if err := module.ProcessDue(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	artifact, err := module.Artifact(ctx, "doc-1", 1)
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if artifact.Markdown != "New body\n\n" {
		t.Fatalf("expected replacement payload converted, got %q", artifact.Markdown)
	}
}

func TestModuleArtifactHTML(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	if err := module.EnqueueNoteMutation(ctx, sampleMutation("doc-1", 1)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := module.ProcessDue(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	html, err := module.ArtifactHTML(ctx, "doc-1", 1)
	if err != nil {
		t.Fatalf("artifact html: %v", err)
	}
	if !strings.Contains(string(html), "<h2") {
		t.Fatalf("expected heading markup, got %q", html)
	}
	if strings.Contains(string(html), "title: Meeting Notes") {
		t.Fatalf("expected front matter stripped, got %q", html)
	}
}

func TestModuleAuditLog(t *testing.T) {
	module := newModule(t, func(cfg *notedown.Config) {
		cfg.Features.Audit = true
	})
	ctx := context.Background()

	if err := module.EnqueueNoteMutation(ctx, sampleMutation("doc-1", 1)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := module.ProcessDue(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	events, err := module.AuditLog(ctx)
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	if len(events) != 1 || events[0].Action != "convert" {
		t.Fatalf("unexpected audit events %+v", events)
	}
}

func TestModuleDisabled(t *testing.T) {
	module := newModule(t, func(cfg *notedown.Config) {
		cfg.Enabled = false
	})

	err := module.EnqueueNoteMutation(context.Background(), sampleMutation("doc-1", 1))
	if !errors.Is(err, notedown.ErrModuleDisabled) {
		t.Fatalf("expected module disabled error, got %v", err)
	}
	if err := module.ProcessDue(context.Background()); !errors.Is(err, notedown.ErrModuleDisabled) {
		t.Fatalf("expected module disabled error, got %v", err)
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	cfg := notedown.DefaultConfig()
	cfg.Worker.BatchSize = 0
	if _, err := notedown.New(cfg); !errors.Is(err, notedown.ErrWorkerBatchSizeInvalid) {
		t.Fatalf("expected config validation error, got %v", err)
	}
}

func TestModuleWithBunBackedStore(t *testing.T) {
	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	module := newModule(t, nil, notedown.WithBunDB(db))
	ctx := context.Background()

	if err := module.EnqueueNoteMutation(ctx, sampleMutation("doc-1", 2)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := module.ProcessDue(ctx); err != nil {
		t.Fatalf("process: %v", err)
	}

	artifact, err := module.Artifact(ctx, "doc-1", 2)
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if artifact.Version != 2 || artifact.Checksum == "" {
		t.Fatalf("unexpected artifact %+v", artifact)
	}

	if _, err := module.Artifact(ctx, "doc-1", 99); !errors.Is(err, interfaces.ErrArtifactNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
