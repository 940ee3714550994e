package convertcmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	enqueueConvertMessageType = "notedown.note.enqueue_convert"
	processDueMessageType     = "notedown.jobs.process_due"
)

// EnqueueConvertCommand schedules an asynchronous conversion of a note
// version. Blocks and Metadata carry the raw note payload exactly as the
// authoring surface produced it; decoding happens inside the worker so a bad
// document fails the job rather than the enqueue.
type EnqueueConvertCommand struct {
	// DocumentID identifies the note whose content should be converted.
	DocumentID string `json:"document_id"`
	// Version selects the note revision the blocks belong to.
	Version int64 `json:"version"`
	// Blocks carries the structured block list to convert.
	Blocks []any `json:"blocks"`
	// Metadata carries optional note metadata rendered as front matter.
	Metadata map[string]any `json:"metadata,omitempty"`
	// RunAt defers execution; a zero value means convert as soon as possible.
	RunAt time.Time `json:"run_at,omitempty"`
}

// Type implements command.Message.
func (EnqueueConvertCommand) Type() string { return enqueueConvertMessageType }

// Validate ensures the note reference and block payload are present before handlers execute.
func (cmd EnqueueConvertCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("notedown.note.enqueue_convert.document_id_required", "document_id is required")
			}
			return nil
		})),
		validation.Field(&cmd.Version, validation.Min(int64(0))),
		validation.Field(&cmd.Blocks, validation.NotNil),
	)
}

// ProcessDueCommand drains one batch of due conversion jobs.
type ProcessDueCommand struct{}

// Type implements command.Message.
func (ProcessDueCommand) Type() string { return processDueMessageType }

// Validate implements command.Message.
func (ProcessDueCommand) Validate() error { return nil }
