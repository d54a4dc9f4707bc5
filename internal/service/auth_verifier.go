package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

// AuthVerifier validates bearer tokens issued by the campus identity service.
// This API never issues tokens itself; it only checks signatures against the
// shared secret and extracts the role claims RBAC needs.
type AuthVerifier struct {
	secret []byte
}

// NewAuthVerifier constructs a verifier over the shared HS256 secret.
func NewAuthVerifier(secret string) *AuthVerifier {
	return &AuthVerifier{secret: []byte(secret)}
}

// ValidateToken parses and validates an access token returning the claims.
func (v *AuthVerifier) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
