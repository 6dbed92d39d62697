package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{InsufficientData, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
		{Code("OTHER"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus())
		})
	}
}

func TestFrom(t *testing.T) {
	insufficient := fmt.Errorf("regression: %w", contracts.ErrInsufficientData)
	invalid := fmt.Errorf("parse: %w", contracts.ErrInvalidInput)
	plain := errors.New("connection refused")

	assert.Equal(t, InsufficientData, From(insufficient).Code())
	assert.ErrorIs(t, From(insufficient), contracts.ErrInsufficientData)
	assert.Equal(t, BadRequest, From(invalid).Code())

	internal := From(plain)
	assert.Equal(t, Internal, internal.Code())
	assert.Equal(t, "internal error", internal.Message())
	assert.ErrorIs(t, internal, plain)

	custom := New(NotFound, "no such source")
	assert.Same(t, custom, From(fmt.Errorf("wrapped: %w", custom)))
}
