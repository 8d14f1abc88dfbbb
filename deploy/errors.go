package deploy

import "errors"

// Kind is a stable error category for programmatic handling.
//
// Callers should branch on Kind/Code rather than matching error strings.
// Error() strings are human-readable and may evolve.
type Kind string

const (
	KindAuthorization   Kind = "Authorization"
	KindStateConflict   Kind = "StateConflict"
	KindInputValidation Kind = "InputValidation"
	KindNotFound        Kind = "NotFound"
)

// Code is a stable identifier naming the violated precondition.
type Code string

const (
	CodeNotAdmin             Code = "NotAdmin"
	CodeNotPendingAdmin      Code = "NotPendingAdmin"
	CodePendingNotSet        Code = "PendingNotSet"
	CodeAlreadyExists        Code = "AlreadyExists"
	CodeFrozenImmutable      Code = "FrozenImmutable"
	CodeDuplicateCapability  Code = "DuplicateCapability"
	CodeMissingAdminResource Code = "MissingAdminResource"
	CodeLengthMismatch       Code = "LengthMismatch"
	CodeFeatureUnavailable   Code = "FeatureUnavailable"
	CodeCodeObjectNotFound   Code = "CodeObjectNotFound"
)

// Error is the structured error surfaced by every deployment operation.
//
// Every failure aborts the whole enclosing operation with zero partial
// effect; the error reaches the transaction submitter verbatim.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, code Code, msg string) error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func wrapError(kind Kind, code Code, msg string, cause error) error {
	if cause == nil {
		return newError(kind, code, msg)
	}
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsCode reports whether err is (or wraps) a *Error with the given Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// ErrCode returns the stable Code for a structured error, or "" if unknown.
func ErrCode(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
