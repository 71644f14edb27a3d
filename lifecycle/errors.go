package lifecycle

import (
	"errors"
	"fmt"
)

// ErrNoDocument is returned for edits and saves before any new or open.
var ErrNoDocument = errors.New("no document loaded")

// Kind classifies a lifecycle failure.
type Kind int

const (
	OpenFailed Kind = iota + 1
	SaveFailed
	SaveAsFailed
)

func (k Kind) String() string {
	switch k {
	case OpenFailed:
		return "open failed"
	case SaveFailed:
		return "save failed"
	case SaveAsFailed:
		return "save as failed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error reports a failed open or save. None of them are fatal: the
// controller state is left exactly as it was before the attempt.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// Message is the text shown to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case OpenFailed:
		return fmt.Sprintf("Failed to open file '%s'.", e.Path)
	case SaveAsFailed:
		return fmt.Sprintf("Failed to save file as '%s'.", e.Path)
	default:
		return "Failed to save file."
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Path
	}
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a lifecycle *Error of kind k.
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}
