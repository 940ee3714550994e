package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrArtifactNotFound reports a missing artifact for a (document, version) pair.
var ErrArtifactNotFound = errors.New("artifacts: artifact not found")

// Artifact is the durable Markdown output of one conversion for one note
// version. The row identity is a pure function of (DocumentID, Version) so
// redelivered jobs overwrite their own slot and can never clobber another
// version.
type Artifact struct {
	ID           uuid.UUID
	DocumentID   string
	Version      int64
	Markdown     string
	Checksum     string
	WarningCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ArtifactStore persists conversion output under version-qualified keys.
// Put must be overwrite-safe for the same (DocumentID, Version) pair and
// all-or-nothing per attempt.
type ArtifactStore interface {
	Put(ctx context.Context, artifact Artifact) error
	Get(ctx context.Context, documentID string, version int64) (*Artifact, error)
	// GetLatest returns the artifact with the highest version for the document.
	GetLatest(ctx context.Context, documentID string) (*Artifact, error)
}
