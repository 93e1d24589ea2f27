// Package middleware provides HTTP middleware for API access control.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is the alternative to an Authorization bearer token.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth creates middleware that admits requests carrying one of keys,
// either as "Authorization: Bearer <key>" or in the X-API-Key header.
// With no keys configured every request is admitted.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed = append(allowed, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := presentedKey(r)
			if token == "" || !matches(allowed, []byte(token)) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="brand-analyzer"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey extracts the key from the request, preferring the Authorization header.
func presentedKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Handle case-insensitive "Bearer" prefix
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return parts[1]
	}
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}

func matches(allowed [][]byte, token []byte) bool {
	ok := 0
	for _, key := range allowed {
		ok |= subtle.ConstantTimeCompare(key, token)
	}
	return ok == 1
}
