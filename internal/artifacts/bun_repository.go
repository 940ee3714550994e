package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-notedown/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists conversion artifacts using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed artifact store.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// EnsureSchema creates the artifact table when it does not exist yet.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("artifacts: bun repository requires a database")
	}
	_, err := r.db.NewCreateTable().
		Model((*artifactModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Put creates or updates the artifact row for the given document version.
func (r *BunRepository) Put(ctx context.Context, artifact interfaces.Artifact) error {
	if r.db == nil {
		return errors.New("artifacts: bun repository requires a database")
	}

	var existing artifactModel
	err := r.db.NewSelect().Model(&existing).Where("id = ?", artifact.ID).Scan(ctx)
	created := false
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return err
		}
	}

	now := time.Now().UTC()
	model := modelFromArtifact(artifact)
	model.UpdatedAt = now
	if created {
		if model.CreatedAt.IsZero() {
			model.CreatedAt = now
		}
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return err
		}
		return nil
	}

	model.CreatedAt = existing.CreatedAt
	_, err = r.db.NewUpdate().
		Model(&model).
		Column("markdown", "checksum", "warning_count", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// Get returns the artifact for a specific document version.
func (r *BunRepository) Get(ctx context.Context, documentID string, version int64) (*interfaces.Artifact, error) {
	if r.db == nil {
		return nil, errors.New("artifacts: bun repository requires a database")
	}
	var model artifactModel
	err := r.db.NewSelect().
		Model(&model).
		Where("document_id = ?", documentID).
		Where("version = ?", version).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrArtifactNotFound
		}
		return nil, err
	}
	artifact := modelToArtifact(&model)
	return &artifact, nil
}

// GetLatest returns the artifact with the highest version for a document.
func (r *BunRepository) GetLatest(ctx context.Context, documentID string) (*interfaces.Artifact, error) {
	if r.db == nil {
		return nil, errors.New("artifacts: bun repository requires a database")
	}
	var model artifactModel
	err := r.db.NewSelect().
		Model(&model).
		Where("document_id = ?", documentID).
		Order("version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrArtifactNotFound
		}
		return nil, err
	}
	artifact := modelToArtifact(&model)
	return &artifact, nil
}

type artifactModel struct {
	bun.BaseModel `bun:"table:note_artifacts"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	DocumentID   string    `bun:"document_id,notnull"`
	Version      int64     `bun:"version,notnull"`
	Markdown     string    `bun:"markdown,notnull"`
	Checksum     string    `bun:"checksum,notnull"`
	WarningCount int       `bun:"warning_count,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func modelFromArtifact(artifact interfaces.Artifact) artifactModel {
	return artifactModel{
		ID:           artifact.ID,
		DocumentID:   artifact.DocumentID,
		Version:      artifact.Version,
		Markdown:     artifact.Markdown,
		Checksum:     artifact.Checksum,
		WarningCount: artifact.WarningCount,
		CreatedAt:    artifact.CreatedAt,
		UpdatedAt:    artifact.UpdatedAt,
	}
}

func modelToArtifact(model *artifactModel) interfaces.Artifact {
	if model == nil {
		return interfaces.Artifact{}
	}
	return interfaces.Artifact{
		ID:           model.ID,
		DocumentID:   model.DocumentID,
		Version:      model.Version,
		Markdown:     model.Markdown,
		Checksum:     model.Checksum,
		WarningCount: model.WarningCount,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
