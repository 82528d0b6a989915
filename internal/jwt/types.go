package jwt

import "errors"

var (
	ErrEmptyToken    = errors.New("jwt: token string is empty")
	ErrInvalidToken  = errors.New("jwt: token is not valid")
	ErrMissingSecret = errors.New("jwt: signing secret is empty")
)

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}
