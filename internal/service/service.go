package service

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// BusinessError is a domain rule violation with an HTTP status hint.
// Handlers map it to the apierror envelope; anything else becomes a 500.
type BusinessError struct {
	Status int
	Msg    string
}

func (e *BusinessError) Error() string { return e.Msg }

func errInvalid(msg string) error   { return &BusinessError{Status: http.StatusBadRequest, Msg: msg} }
func errConflict(msg string) error  { return &BusinessError{Status: http.StatusConflict, Msg: msg} }
func errNotFound(msg string) error  { return &BusinessError{Status: http.StatusNotFound, Msg: msg} }
func errForbidden(msg string) error { return &BusinessError{Status: http.StatusForbidden, Msg: msg} }

// AsBusinessError unwraps a BusinessError from an error chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

// runTx runs fn inside a database transaction. When db is nil (unit tests
// with stub repositories) fn runs directly with a nil tx; repositories used
// in tests must tolerate that.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
