// Package auth issues and verifies the bearer credentials that identify
// users. Tokens are HS256 JWTs carrying the user id and role.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pulsechat/common"
	"pulsechat/models"
)

// Claims includes the registered claims plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
}

// Manager signs and parses tokens with a shared secret.
type Manager struct {
	secret   []byte
	validity time.Duration
}

func NewManager(secret string, validity time.Duration) *Manager {
	return &Manager{secret: []byte(secret), validity: validity}
}

// Generate issues a token for the user.
func (m *Manager) Generate(userID int64, role models.Role) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   role,
	})
	return token.SignedString(m.secret)
}

// Validity returns the configured token lifetime.
func (m *Manager) Validity() time.Duration {
	return m.validity
}

// Parse verifies a token and returns its claims. Any verification failure
// maps to ErrUnauthenticated.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.ErrUnauthenticated
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, common.ErrUnauthenticated
	}

	return claims, nil
}
