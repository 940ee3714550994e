package artifacts

import (
	"context"
	"sync"

	"github.com/goliatone/go-notedown/pkg/interfaces"
)

type versionKey struct {
	documentID string
	version    int64
}

// NewInMemory creates an artifact store backed by process memory.
func NewInMemory() interfaces.ArtifactStore {
	return &inMemoryStore{
		byVersion: make(map[versionKey]interfaces.Artifact),
		latest:    make(map[string]int64),
	}
}

type inMemoryStore struct {
	mu        sync.RWMutex
	byVersion map[versionKey]interfaces.Artifact
	latest    map[string]int64
}

func (s *inMemoryStore) Put(_ context.Context, artifact interfaces.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := versionKey{documentID: artifact.DocumentID, version: artifact.Version}
	s.byVersion[key] = artifact
	if current, ok := s.latest[artifact.DocumentID]; !ok || artifact.Version >= current {
		s.latest[artifact.DocumentID] = artifact.Version
	}
	return nil
}

func (s *inMemoryStore) Get(_ context.Context, documentID string, version int64) (*interfaces.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.byVersion[versionKey{documentID: documentID, version: version}]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	clone := artifact
	return &clone, nil
}

func (s *inMemoryStore) GetLatest(_ context.Context, documentID string) (*interfaces.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.latest[documentID]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	artifact, ok := s.byVersion[versionKey{documentID: documentID, version: version}]
	if !ok {
		return nil, interfaces.ErrArtifactNotFound
	}
	clone := artifact
	return &clone, nil
}
