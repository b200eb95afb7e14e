// Package ccerrors defines the chaincode error taxonomy. Every contract
// operation fails with one of these kinds so callers can distinguish a bad
// request from a missing document or a policy rejection.
package ccerrors

import (
    "errors"
    "fmt"
)

// Kind classifies a chaincode error.
type Kind int

const (
    // KindUnknown is the zero value for errors produced outside this package.
    KindUnknown Kind = iota
    // KindValidation marks missing or malformed input fields.
    KindValidation
    // KindNotFound marks a referenced document that does not exist.
    KindNotFound
    // KindUnauthorized marks a role, organization or ownership mismatch.
    KindUnauthorized
    // KindConflict marks creation of an already-existing unique entity.
    KindConflict
    // KindBusinessRule marks a domain rule rejection (caps, stock, balances).
    KindBusinessRule
)

func (k Kind) String() string {
    switch k {
    case KindValidation:
        return "validation"
    case KindNotFound:
        return "not found"
    case KindUnauthorized:
        return "unauthorized"
    case KindConflict:
        return "conflict"
    case KindBusinessRule:
        return "business rule"
    default:
        return "unknown"
    }
}

// Error is a classified chaincode error. The message is returned to the
// caller verbatim.
type Error struct {
    Kind Kind
    Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Validationf builds a validation error.
func Validationf(format string, args ...interface{}) error {
    return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...interface{}) error {
    return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorizedf builds an authorization error.
func Unauthorizedf(format string, args ...interface{}) error {
    return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...interface{}) error {
    return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// BusinessRulef builds a business-rule error.
func BusinessRulef(format string, args ...interface{}) error {
    return &Error{Kind: KindBusinessRule, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or KindUnknown if err was not produced by
// this package.
func KindOf(err error) Kind {
    var e *Error
    if errors.As(err, &e) {
        return e.Kind
    }
    return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
    return KindOf(err) == kind
}
