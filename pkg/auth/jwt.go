package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// Claims carried by an access token. Token issuance lives in the identity
// service; this package only verifies what it is handed.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

type TokenValidator interface {
	Validate(token string) (*model.Actor, error)
}

type hmacValidator struct {
	secret []byte
}

func NewValidator(secret string) TokenValidator {
	return &hmacValidator{secret: []byte(secret)}
}

func (v *hmacValidator) Validate(tokenStr string) (*model.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	switch claims.Role {
	case model.RolePatient, model.RoleDoctor, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role claim %q", claims.Role)
	}

	return &model.Actor{ID: id, Role: claims.Role}, nil
}
