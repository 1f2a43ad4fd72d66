// Package auth issues and verifies the bearer tokens that identify mobile
// clients, and hashes account passwords.
package auth

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Provider maps bearer tokens to stable user identifiers.
type Provider interface {
	IssueToken(userID string) (string, error)
	VerifyToken(token string) (string, error)
}

// JWTProvider is an HS256 JWT implementation of Provider.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTProvider creates a provider signing with secret; issued tokens
// expire after ttl.
func NewJWTProvider(secret string, ttl time.Duration) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token carrying the user's ID.
func (p *JWTProvider) IssueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(p.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// VerifyToken validates the signature and expiry and returns the user ID.
func (p *JWTProvider) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("token carries no user ID")
	}
	return userID, nil
}

var _ Provider = (*JWTProvider)(nil)
