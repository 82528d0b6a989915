package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt"
)

func TestCreateAndParseToken(t *testing.T) {
	s, err := NewSigner("test-secret")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	res, err := s.CreateToken("me@x.io", 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	claims, err := s.ParseToken(res.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["email"] != "me@x.io" {
		t.Fatalf("unexpected email claim %v", claims["email"])
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	s, _ := NewSigner("test-secret")
	other, _ := NewSigner("other-secret")

	foreign, _ := other.CreateToken("me@x.io", time.Minute)
	if _, err := s.ParseToken(foreign.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := s.CreateToken("me@x.io", time.Minute)
	s.now = time.Now
	if _, err := s.ParseToken(expired.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	if _, err := s.ParseToken(""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected empty token error, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	s, _ := NewSigner("test-secret")
	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"email": "me@x.io"})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := s.ParseToken(signed); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestNewSignerRequiresSecret(t *testing.T) {
	if _, err := NewSigner(""); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected missing secret, got %v", err)
	}
}
