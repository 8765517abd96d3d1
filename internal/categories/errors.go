package categories

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a category request.
type Kind int

// Error kinds, ordered as the request protocol checks them.
const (
	KindOther Kind = iota
	KindNotFound
	KindPermissionDenied
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindValidation:
		return "validation"
	default:
		return "other"
	}
}

// Error is a categorized failure. Message is shown to the caller; for
// permission and validation errors it is a translation key.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound signals the categories feature is switched off
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "categories are disabled"}
}

// PermissionDenied rejects the caller or the transport
func PermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

// Validation rejects the request payload against the current store state
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err, KindOther for uncategorized errors
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindOther
}
