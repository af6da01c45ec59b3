package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func defaultClaims(subject string, role model.Role) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(testSecret)
	id := uuid.New()

	actor, err := v.Validate(signToken(t, testSecret, defaultClaims(id.String(), model.RoleDoctor)))
	require.NoError(t, err)
	assert.Equal(t, id, actor.ID)
	assert.Equal(t, model.RoleDoctor, actor.Role)
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator(testSecret)
	id := uuid.New().String()

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.Validate(signToken(t, "another-secret-another-secret-32", defaultClaims(id, model.RolePatient)))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := defaultClaims(id, model.RolePatient)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := v.Validate(signToken(t, testSecret, claims))
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := v.Validate(signToken(t, testSecret, defaultClaims(id, model.Role("superuser"))))
		assert.Error(t, err)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		_, err := v.Validate(signToken(t, testSecret, defaultClaims("user-42", model.RoleAdmin)))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Validate("not.a.token")
		assert.Error(t, err)
	})
}
