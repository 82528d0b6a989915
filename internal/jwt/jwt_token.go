// Package jwt signs and checks the bearer tokens guarding the local state API.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const DefaultTTL = 15 * time.Minute

// Signer issues and validates HS256 tokens with one shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

func (s *Signer) CreateToken(email string, ttl time.Duration) (TokenResponse, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expires := s.now().Add(ttl).Unix()

	claims := jwt.MapClaims{
		"email": email,
		"exp":   expires,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: signed, ExpiresAt: expires}, nil
}

func (s *Signer) ParseToken(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
