package application

import (
	"errors"
	"fmt"
	"strings"
)

// Reason strings handed back to wallets. The callback boundary collapses
// anything unclassified into ErrNotPayable.
var (
	ErrAppNotFound = errors.New("the app was not found")

	ErrLnurlDisabled = errors.New("lightning and LNURL (including " +
		"LUD-12 comment support) must be enabled")

	ErrAmountOutOfBounds = errors.New("amount is out of bounds")

	ErrInvalidMetadata = errors.New("LNURL pay request metadata is " +
		"not valid")

	ErrDescriptionHashMismatch = errors.New("could not generate invoice " +
		"with a valid description hash")

	ErrNotPayable = errors.New("invoice not in a valid payable state")
)

// IsNotFound reports whether err maps to a plain 404 rather than an LNURL
// error document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAppNotFound) || errors.Is(err, ErrLnurlDisabled)
}

// ValidationError carries per-field messages for form re-rendering. It is
// not reported through the LNURL error envelope.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

func isCallbackError(err error) bool {
	for _, known := range []error{
		ErrAppNotFound, ErrLnurlDisabled, ErrAmountOutOfBounds,
		ErrInvalidMetadata, ErrDescriptionHashMismatch,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
