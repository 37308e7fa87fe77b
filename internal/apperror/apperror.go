// Package apperror defines the error taxonomy shared by the survey and upload
// contexts. HTTP handlers translate a Kind into a status code; the Code is the
// machine-readable message written to the response body.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindAuthorization
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindAuthorization:
		return "authorization"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Machine-readable codes.
const (
	CodeDuplicateResponse = "DuplicateResponse"
	CodeInvalidRating     = "InvalidRating"
	CodeInvalidFilename   = "InvalidFilename"
	CodeMalformedFilename = "MalformedFilename"
	CodeNotFound          = "NotFound"
	CodeNotAuthorized     = "NotAuthorized"
	CodeUnauthenticated   = "Unauthenticated"
	CodeSurveyNotFound    = "SurveyNotFound"
	CodeSurveyInactive    = "SurveyInactive"
	CodeNotHired          = "NotHired"
	CodeNotEligible       = "NotEligible"
	CodeTimingLocked      = "TimingLocked"
	CodeInvalidSurvey     = "InvalidSurvey"
	CodeInvalidAnswers    = "InvalidAnswers"
	CodeInvalidUpload     = "InvalidUpload"
	CodeInvalidRequest    = "InvalidRequest"
)

// Error carries a Kind and Code together with an optional human readable
// detail and cause. Detail is meant for logs and for validation feedback; it
// is never written for authorization or not-found failures.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same Kind and Code, so sentinel values
// declared with New can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New builds an error of the given kind.
func New(kind Kind, code string, detail string) *Error {
	return &Error{Kind: kind, Code: code, Detail: detail}
}

// Wrap builds an error of the given kind with a cause.
func Wrap(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Cause: cause}
}

func Validation(code, detail string) *Error {
	return New(KindValidation, code, detail)
}

func NotFound(code string) *Error {
	return New(KindNotFound, code, "")
}

func Duplicate(code string, cause error) *Error {
	return Wrap(KindDuplicate, code, cause)
}

func Forbidden() *Error {
	return New(KindAuthorization, CodeNotAuthorized, "")
}

func Unauthenticated(detail string) *Error {
	return New(KindAuthentication, CodeUnauthenticated, detail)
}

// KindOf reports the Kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the Code of err, empty when err is not an *Error.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
