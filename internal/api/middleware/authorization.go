package middleware

import (
	"net/http"
	"strings"

	internaljwt "chat-app-agent/internal/jwt"
)

const bearerPrefix = "Bearer "

func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// ValidateJWT rejects requests without a token signed by signer. A nil signer
// leaves the API open.
func ValidateJWT(signer *internaljwt.Signer) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if signer == nil {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, err := signer.ParseToken(tokenString); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
}
