package errors

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindPersistence   Kind = "persistence"
)

type Exception struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Exception) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match by kind against ErrValidation, ErrNotFound, ErrAuthorization
// and ErrPersistence. Any other Exception target matches on kind and message.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok || t.Kind != e.Kind {
		return false
	}
	switch t {
	case ErrValidation, ErrNotFound, ErrAuthorization, ErrPersistence:
		return true
	}
	return t.Message == e.Message
}

var (
	ErrValidation    = &Exception{Kind: KindValidation, Message: "validation failed", StatusCode: http.StatusBadRequest}
	ErrNotFound      = &Exception{Kind: KindNotFound, Message: "not found", StatusCode: http.StatusNotFound}
	ErrAuthorization = &Exception{Kind: KindAuthorization, Message: "forbidden", StatusCode: http.StatusForbidden}
	ErrPersistence   = &Exception{Kind: KindPersistence, Message: "storage failure", StatusCode: http.StatusInternalServerError}
)

func Validation(msg string) *Exception {
	return &Exception{Kind: KindValidation, Message: msg, StatusCode: http.StatusBadRequest}
}

func NotFound(msg string) *Exception {
	return &Exception{Kind: KindNotFound, Message: msg, StatusCode: http.StatusNotFound}
}

func Authorization(msg string) *Exception {
	return &Exception{Kind: KindAuthorization, Message: msg, StatusCode: http.StatusForbidden}
}

// Persistence wraps a store failure with the operation that caused it.
func Persistence(err error, op string) *Exception {
	return &Exception{
		Kind:       KindPersistence,
		Message:    "storage failure",
		StatusCode: http.StatusInternalServerError,
		Err:        pkgerrors.Wrap(err, op),
	}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client facing text of err. Persistence details are not exposed.
func Message(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
