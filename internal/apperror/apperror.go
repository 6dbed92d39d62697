// Package apperror classifies failures for the routing layer.
package apperror

import (
	"errors"
	"net/http"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

type Code string

const (
	BadRequest       Code = "BAD_REQUEST"
	InsufficientData Code = "INSUFFICIENT_DATA"
	NotFound         Code = "NOT_FOUND"
	Internal         Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches a caller-facing message to an underlying cause.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest, InsufficientData:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// From classifies err. AppErrors pass through; sentinel errors from the core
// map to their client-facing codes; anything else is internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, contracts.ErrInsufficientData):
		return Wrap(InsufficientData, err.Error(), err)
	case errors.Is(err, contracts.ErrInvalidInput):
		return Wrap(BadRequest, err.Error(), err)
	default:
		return Wrap(Internal, "internal error", err)
	}
}
