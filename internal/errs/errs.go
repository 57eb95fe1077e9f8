// Package errs implements the typed error-kind policy the pipeline uses to
// report stage failures without aborting the whole analysis.
package errs

import "fmt"

// Kind is one of the error kinds the design document enumerates.
type Kind string

const (
	CaptureFailed    Kind = "capture_failed"
	OcrFailed        Kind = "ocr_failed"
	ClassifyError    Kind = "classify_error"
	EmbedFailed      Kind = "embed_failed"
	IndexWriteFailed Kind = "index_write_failed"
	StaleCache       Kind = "stale_cache"
	CorruptStore     Kind = "corrupt_store"
	InvalidInput     Kind = "invalid_input"
	InternalInvariant Kind = "internal_invariant"
)

// Error wraps an underlying cause with a stable Kind a caller can dispatch
// on, without needing to parse message text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed error with no underlying cause.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a typed kind to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err (or something it wraps) carries the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
