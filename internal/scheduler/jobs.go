package scheduler

import "strconv"

const (
	JobTypeNoteConvert = "notedown.note.convert"
)

// ConvertJobKey identifies the conversion job for a note version. Using the
// same key for re-enqueues of the same version keeps the queue idempotent.
func ConvertJobKey(documentID string, version int64) string {
	return "note:" + documentID + ":v" + strconv.FormatInt(version, 10) + ":convert"
}
