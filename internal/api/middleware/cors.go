package middleware

import (
	"net/http"
	"strings"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

func DefaultCORSConfig(origins ...string) CORSConfig {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	}
}

func (c CORSConfig) allowedOrigin(origin string) string {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			// Browsers refuse a literal wildcard on credentialed requests.
			if c.AllowCredentials {
				return origin
			}
			return "*"
		}
		if o == origin {
			return o
		}
	}
	return ""
}

func CORS(config CORSConfig) Middleware {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")

	return func(f http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowed := config.allowedOrigin(r.Header.Get("Origin"))
			if allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				if config.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
			}

			if r.Method == http.MethodOptions {
				if allowed != "" {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			f(w, r)
		}
	}
}
