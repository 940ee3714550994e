package markdown

import (
	"context"
	"fmt"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-notedown/blocks"
	"github.com/goliatone/go-notedown/internal/logging"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

// Service implements interfaces.Converter. The service owns no mutable state:
// each Convert call works on its own snapshot and list context, so one
// instance is safe to share across concurrent jobs.
type Service struct {
	logger interfaces.Logger
}

// Option configures the converter service.
type Option func(*Service)

// WithLogger injects the logger used for warning telemetry.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a converter service.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert renders the request's block tree into canonical Markdown, with
// front matter when metadata is present. Caller-supplied structures are never
// mutated; derived adjustments (slug normalization) happen on a copy.
func (s *Service) Convert(ctx context.Context, req interfaces.ConvertRequest) (*interfaces.ConvertResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	meta := req.Metadata.Clone()
	if meta != nil {
		normalizeSlug(meta)
	}

	markdown, warnings, err := AssembleDocument(req.Blocks, meta)
	if err != nil {
		return nil, fmt.Errorf("markdown convert %s v%d: %w", req.DocumentID, req.Version, err)
	}

	for _, warning := range warnings {
		logging.WithFields(s.logger, map[string]any{
			"document_id": req.DocumentID,
			"version":     req.Version,
			"block_index": warning.Index,
			"block_type":  warning.BlockType,
		}).Warn("markdown.convert.element_skipped", "warning_type", string(warning.Type))
	}

	return &interfaces.ConvertResult{
		Markdown: markdown,
		Warnings: warnings,
	}, nil
}

// normalizeSlug cleans a caller-provided slug and derives one from the title
// when absent, so front matter slugs stay stable across re-conversions.
func normalizeSlug(meta *blocks.Metadata) {
	if meta.Slug != "" {
		if normalized, err := slug.Normalize(meta.Slug); err == nil {
			meta.Slug = normalized
		}
		return
	}
	if meta.Title == "" {
		return
	}
	if normalized, err := slug.Normalize(meta.Title); err == nil {
		meta.Slug = normalized
	}
}
