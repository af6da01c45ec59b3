package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NewNotFound("appointment", nil), http.StatusNotFound},
		{NewValidation("bad input", nil), http.StatusBadRequest},
		{NewUnauthorized("missing token"), http.StatusUnauthorized},
		{NewForbidden("nope"), http.StatusForbidden},
		{NewSlotConflict(nil), http.StatusConflict},
		{NewAlreadyTerminal("already cancelled"), http.StatusConflict},
		{NewInternal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestIsCode(t *testing.T) {
	err := NewSlotConflict(errors.New("unique violation"))
	assert.True(t, IsCode(err, ErrSlotConflict))
	assert.False(t, IsCode(err, ErrNotFound))

	wrapped := fmt.Errorf("claim failed: %w", err)
	assert.True(t, IsCode(wrapped, ErrSlotConflict), "IsCode must see through wrapping")

	assert.False(t, IsCode(errors.New("plain"), ErrSlotConflict))
	assert.False(t, IsCode(nil, ErrSlotConflict))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "appointment not found", NewNotFound("appointment", nil).Error())

	cause := errors.New("sql: no rows")
	err := NewNotFound("appointment", cause)
	assert.Equal(t, "appointment not found: sql: no rows", err.Error())
	assert.ErrorIs(t, err, cause)
}
