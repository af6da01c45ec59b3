package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hospital-api/internal/model"
)

type stubValidator struct {
	actor *model.Actor
	err   error
}

func (s *stubValidator) Validate(_ string) (*model.Actor, error) {
	return s.actor, s.err
}

func newTestEngine(mw *AuthMiddleware, roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", mw.Authenticate())
	if len(roles) > 0 {
		group.Use(mw.RequireRole(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"actor_id": actor.ID})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	actor := &model.Actor{ID: uuid.New(), Role: model.RolePatient}
	r := newTestEngine(NewAuthMiddleware(&stubValidator{actor: actor}))

	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer token").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "token-without-scheme").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Basic dXNlcjpwYXNz").Code)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r := newTestEngine(NewAuthMiddleware(&stubValidator{err: errors.New("expired")}))
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer bad").Code)
}

func TestRequireRole(t *testing.T) {
	patient := &model.Actor{ID: uuid.New(), Role: model.RolePatient}

	admins := newTestEngine(NewAuthMiddleware(&stubValidator{actor: patient}), model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, doRequest(admins, "Bearer token").Code)

	patients := newTestEngine(NewAuthMiddleware(&stubValidator{actor: patient}), model.RoleDoctor, model.RolePatient)
	assert.Equal(t, http.StatusOK, doRequest(patients, "Bearer token").Code)
}
