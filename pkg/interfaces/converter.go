package interfaces

import (
	"context"

	"github.com/goliatone/go-notedown/blocks"
)

// WarningType categorizes non-fatal anomalies recorded during conversion.
type WarningType string

const (
	// WarningUnknownBlock flags a block whose type has no renderer; the block
	// is skipped and conversion continues.
	WarningUnknownBlock WarningType = "unknown_block"
	// WarningUnknownSpan flags an inline span whose type is not text.
	WarningUnknownSpan WarningType = "unknown_span"
)

// Warning describes one skipped element. Warnings never fail a conversion;
// they exist so skips stay observable instead of silent.
type Warning struct {
	Type      WarningType `json:"type"`
	BlockType string      `json:"blockType,omitempty"`
	Index     int         `json:"index"`
	Message   string      `json:"message"`
}

// ConvertRequest is one immutable conversion unit: a note version's block
// tree plus its optional metadata snapshot.
type ConvertRequest struct {
	DocumentID string
	Version    int64
	Blocks     blocks.Document
	Metadata   *blocks.Metadata
}

// ConvertResult carries the rendered Markdown and any soft warnings.
type ConvertResult struct {
	Markdown string    `json:"markdown"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Converter renders a block document into canonical Markdown. Implementations
// must be deterministic: identical requests yield byte-identical Markdown.
type Converter interface {
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
}
