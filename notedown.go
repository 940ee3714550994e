package notedown

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-notedown/internal/artifacts"
	convertcmd "github.com/goliatone/go-notedown/internal/commands/convert"
	"github.com/goliatone/go-notedown/internal/jobs"
	"github.com/goliatone/go-notedown/internal/logging"
	"github.com/goliatone/go-notedown/internal/logging/gologger"
	"github.com/goliatone/go-notedown/internal/markdown"
	"github.com/goliatone/go-notedown/internal/scheduler"
	"github.com/goliatone/go-notedown/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// ErrModuleDisabled is returned by mutating operations when the module is
// configured off.
var ErrModuleDisabled = errors.New("notedown: module is disabled")

// ErrArtifactNotFound re-exports the store sentinel for consumers of the root package.
var ErrArtifactNotFound = interfaces.ErrArtifactNotFound

// NoteMutation describes a note change whose content should be converted
// asynchronously. Blocks and Metadata carry the authoring representation
// untouched; validation and decoding happen inside the worker.
type NoteMutation struct {
	DocumentID string
	Version    int64
	Blocks     []any
	Metadata   map[string]any
	RunAt      time.Time
}

// Artifact re-exports the stored conversion result type.
type Artifact = interfaces.Artifact

// Module is the top level conversion pipeline façade.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	scheduler interfaces.Scheduler
	store     interfaces.ArtifactStore
	converter interfaces.Converter
	worker    *jobs.Worker
	audit     jobs.AuditRecorder
	handlers  *convertcmd.HandlerSet
	clock     func() time.Time
}

// Option overrides a module dependency during construction.
type Option func(*Module)

// WithScheduler replaces the default in-memory scheduler.
func WithScheduler(sched interfaces.Scheduler) Option {
	return func(m *Module) {
		if sched != nil {
			m.scheduler = sched
		}
	}
}

// WithArtifactStore replaces the configured artifact store.
func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return func(m *Module) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLoggerProvider replaces the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithBunDB persists artifacts through the supplied Bun database instead of
// opening one from the configured DSN.
func WithBunDB(db *bun.DB) Option {
	return func(m *Module) {
		if db != nil {
			m.store = artifacts.NewBunRepository(db)
		}
	}
}

// WithAuditRecorder installs an audit sink for worker conversions.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(m *Module) {
		if recorder != nil {
			m.audit = recorder
		}
	}
}

// WithClock overrides the module clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Module) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// New constructs the conversion module using the provided configuration and
// optional dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil && cfg.Features.Logger {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.scheduler == nil {
		if cfg.Features.Scheduling {
			m.scheduler = scheduler.NewInMemory(
				scheduler.WithClock(m.clock),
				scheduler.WithDefaultMaxAttempts(cfg.Worker.MaxAttempts),
				scheduler.WithRetryBackoff(cfg.Worker.RetryBackoff),
			)
		} else {
			m.scheduler = scheduler.NewNoOp()
		}
	}

	if m.store == nil {
		store, err := buildArtifactStore(cfg)
		if err != nil {
			return nil, err
		}
		m.store = store
	}
	if repo, ok := m.store.(*artifacts.BunRepository); ok {
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
	}

	if m.audit == nil && cfg.Features.Audit {
		m.audit = jobs.NewInMemoryAuditRecorder()
	}

	m.converter = markdown.NewService(
		markdown.WithLogger(logging.MarkdownLogger(m.provider)),
	)

	workerOpts := []jobs.Option{
		jobs.WithClock(m.clock),
		jobs.WithBatchSize(cfg.Worker.BatchSize),
		jobs.WithLogger(logging.JobsLogger(m.provider)),
	}
	if m.audit != nil {
		workerOpts = append(workerOpts, jobs.WithAuditRecorder(m.audit))
	}
	m.worker = jobs.NewWorker(m.scheduler, m.store, m.converter, workerOpts...)

	handlers, err := convertcmd.RegisterConvertCommands(nil, m.scheduler, m.worker, m.provider, convertcmd.FeatureGates{
		ConversionEnabled: func() bool { return cfg.Enabled && cfg.Features.Conversion },
	})
	if err != nil {
		return nil, err
	}
	m.handlers = handlers

	return m, nil
}

func buildArtifactStore(cfg Config) (interfaces.ArtifactStore, error) {
	switch cfg.Artifacts.Provider {
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", cfg.Artifacts.DSN)
		if err != nil {
			return nil, err
		}
		return artifacts.NewBunRepository(bun.NewDB(sqldb, sqlitedialect.New())), nil
	default:
		return artifacts.NewInMemory(), nil
	}
}

// EnqueueNoteMutation schedules the conversion of a note version. Re-enqueuing
// the same (document, version) pair replaces the previous pending job.
func (m *Module) EnqueueNoteMutation(ctx context.Context, mutation NoteMutation) error {
	if !m.cfg.Enabled {
		return ErrModuleDisabled
	}
	runAt := mutation.RunAt
	if runAt.IsZero() {
		runAt = m.clock()
	}
	return m.handlers.Enqueue.Execute(ctx, convertcmd.EnqueueConvertCommand{
		DocumentID: mutation.DocumentID,
		Version:    mutation.Version,
		Blocks:     mutation.Blocks,
		Metadata:   mutation.Metadata,
		RunAt:      runAt,
	})
}

// ProcessDue drains one batch of due conversion jobs.
func (m *Module) ProcessDue(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrModuleDisabled
	}
	return m.handlers.Process.Execute(ctx, convertcmd.ProcessDueCommand{})
}

// Artifact returns the stored conversion result for a note version.
func (m *Module) Artifact(ctx context.Context, documentID string, version int64) (*Artifact, error) {
	return m.store.Get(ctx, documentID, version)
}

// LatestArtifact returns the newest stored conversion result for a note.
func (m *Module) LatestArtifact(ctx context.Context, documentID string) (*Artifact, error) {
	return m.store.GetLatest(ctx, documentID)
}

// ArtifactHTML renders the stored Markdown body of an artifact to HTML using
// the configured preview options. The front matter header is stripped first.
func (m *Module) ArtifactHTML(ctx context.Context, documentID string, version int64) ([]byte, error) {
	artifact, err := m.store.Get(ctx, documentID, version)
	if err != nil {
		return nil, err
	}
	content, err := markdown.ReadArtifact([]byte(artifact.Markdown))
	if err != nil {
		return nil, err
	}
	return markdown.PreviewHTML(content.Body, markdown.PreviewOptions{
		Extensions: m.cfg.Markdown.Preview.Extensions,
		HardWraps:  m.cfg.Markdown.Preview.HardWraps,
		SafeMode:   m.cfg.Markdown.Preview.SafeMode,
	})
}

// Scheduler exposes the job scheduler for host integrations (cron wiring,
// cancellation).
func (m *Module) Scheduler() interfaces.Scheduler {
	return m.scheduler
}

// Artifacts exposes the artifact store.
func (m *Module) Artifacts() interfaces.ArtifactStore {
	return m.store
}

// Converter exposes the block-to-Markdown converter for synchronous use.
func (m *Module) Converter() interfaces.Converter {
	return m.converter
}

// AuditLog returns the conversion audit events recorded so far, when auditing
// is enabled.
func (m *Module) AuditLog(ctx context.Context) ([]jobs.AuditEvent, error) {
	if m.audit == nil {
		return nil, nil
	}
	return m.audit.List(ctx)
}
