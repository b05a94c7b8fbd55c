// Package apperr defines the error taxonomy shared by services and handlers.
// Every failure that reaches a handler is classified into one Kind, and the
// Kind alone decides the HTTP status of the response.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	}
	return "internal"
}

// Error is a classified error carrying a client-safe message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind and code so sentinel errors survive
// being re-wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New creates a classified error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithCause returns a copy of e with cause attached. The copy still matches e
// under errors.Is.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream, KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Body is the JSON error envelope every endpoint responds with.
type Body struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Response converts err into a status code and envelope. Only messages of
// classified errors reach the client; anything else is reported as internal.
func Response(err error) (int, Body) {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError, Body{Error: "Internal server error", Code: "internal"}
	}
	return HTTPStatus(ae.Kind), Body{Error: ae.Message, Code: ae.Code}
}
