// Package jwttoken validates the access tokens issued by the identity service.
package jwttoken

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Soozey/MADAVOLA/internal/platform/middleware"
	dErrors "github.com/Soozey/MADAVOLA/pkg/domain-errors"
)

// Claims carries the actor identity and resolved roles inside an access token.
// The identity service signs these; this side only verifies.
type Claims struct {
	ActorID string   `json:"actor_id"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}

// Validator verifies HMAC-signed access tokens.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token, returning the claims the
// middleware needs.
func (v *Validator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.TokenClaims{ActorID: claims.ActorID, Roles: claims.Roles}, nil
}
