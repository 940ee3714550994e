package jobs

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notedown/pkg/interfaces"
)

const (
	convertInvalidPayloadCode    = "CONVERT_INVALID_PAYLOAD"
	convertMalformedDocumentCode = "CONVERT_MALFORMED_DOCUMENT"
	convertTransientCode         = "CONVERT_TRANSIENT"
)

// permanentError tags a failure that will never succeed on retry. The
// scheduler fails such jobs immediately instead of burning attempts.
func permanentError(err error, category goerrors.Category, msg, code string) error {
	if err == nil {
		return nil
	}
	wrapped := goerrors.Wrap(err, category, msg).WithTextCode(code)
	return errors.Join(wrapped, interfaces.ErrPermanent)
}

// transientError tags a failure worth retrying, typically storage or
// infrastructure trouble.
func transientError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(convertTransientCode)
}
