package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"slot conflict", apperrors.NewSlotConflict(nil), http.StatusConflict, "this time slot is already booked"},
		{"not found", apperrors.NewNotFound("appointment", nil), http.StatusNotFound, "appointment not found"},
		{"already terminal", apperrors.NewAlreadyTerminal("appointment is already cancelled"), http.StatusConflict, "appointment is already cancelled"},
		{"forbidden", apperrors.NewForbidden("permission denied"), http.StatusForbidden, "permission denied"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := respond(t, func(c *gin.Context) { RespondError(c, tc.err) })
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestRespondErrorOpaque(t *testing.T) {
	// Unrecognized errors must not leak detail to the client.
	w, body := respond(t, func(c *gin.Context) {
		RespondError(c, errors.New("pq: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, body.Message, "pq:")
}

func TestRespondSuccess(t *testing.T) {
	w, body := respond(t, func(c *gin.Context) {
		RespondSuccess(c, http.StatusCreated, map[string]string{"id": "abc"})
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", body.Status)
}
