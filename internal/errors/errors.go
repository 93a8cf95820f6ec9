package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnreadableImage   Kind = "unreadable_image"
	KindSynthesisNetwork  Kind = "synthesis_network"
	KindRendering         Kind = "rendering"
	KindEncoding          Kind = "encoding"
	KindWrite             Kind = "write"
	KindInvalidInputEntry Kind = "invalid_input_entry"
	KindInvalidPath       Kind = "invalid_path"
	KindUnknown           Kind = "unknown"
)

// Error is a failure scoped to one operation on one path.
type Error struct {
	Kind    Kind
	Op      string
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("[%s:%s] %s: %s", e.Kind, e.Op, e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap returns nil for a nil err. An err that already carries a kind is
// returned unchanged so the innermost classification wins.
func Wrap(kind Kind, op, path, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Path:    path,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, path, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Path:    path,
		Message: message,
	}
}

// IsKind checks whether the first typed error in the chain matches kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of the first typed error in the chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}
