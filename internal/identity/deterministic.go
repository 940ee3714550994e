package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArtifactUUID yields the artifact row identity for a (document, version)
// pair. Same pair, same UUID: redelivered jobs write to their own slot.
func ArtifactUUID(documentID string, version int64) uuid.UUID {
	return UUID("go-notedown:artifact:" + strings.TrimSpace(documentID) + ":v" + strconv.FormatInt(version, 10))
}
