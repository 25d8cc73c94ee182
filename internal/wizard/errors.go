package wizard

import "errors"

var (
	// ErrBusy is returned when an operation guarded by a loading flag is
	// already in flight. Nothing changes.
	ErrBusy = errors.New("wizard: operation already in progress")
	// ErrClosed is returned for any mutation after a successful submit.
	ErrClosed = errors.New("wizard: portfolio already submitted")
	// ErrNoContent is returned when the generator succeeds without content.
	ErrNoContent = errors.New("wizard: generator returned no content")
)

// ValidationError is a recoverable gate failure. The step and record are
// left unchanged.
type ValidationError struct {
	Field   string
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func missing(field, title, message string) *ValidationError {
	return &ValidationError{Field: field, Title: title, Message: message}
}
