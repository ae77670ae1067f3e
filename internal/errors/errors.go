// Package errors defines the typed errors surfaced by the ledger to its
// callers. Each DomainError carries a Kind that adapters map to a response.
package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	KindConflict          Kind = "CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindInvalidRange      Kind = "INVALID_RANGE"
	KindBadAmount         Kind = "BAD_AMOUNT"
	KindBadRequest        Kind = "BAD_REQUEST"
)

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same Code, so a sentinel still matches
// after WithMessage.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first DomainError in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries a DomainError of kind k.
func IsKind(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}

// CodeOf returns the Code of the first DomainError in err's chain.
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
