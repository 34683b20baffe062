// Package auth provides authentication middleware for HTTP routes.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/mandalnilabja/vecway/internal/types"
)

// Error messages returned with 403 responses.
const (
	msgMissingCredentials = "Not authenticated"
	msgInvalidSecret      = "Invalid APP_SECRET"
)

// SharedSecret authenticates callers against one static bearer secret.
// Both sides are hashed before comparison so the check takes the same time
// regardless of where or whether the tokens differ, including their length.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	want := blake2b.Sum256([]byte(secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeForbidden(w, msgMissingCredentials)
				return
			}

			got := blake2b.Sum256([]byte(token))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				writeForbidden(w, msgInvalidSecret)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts a non-empty token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeForbidden writes an OpenAI-style 403 response.
func writeForbidden(w http.ResponseWriter, message string) {
	types.WriteError(w, http.StatusForbidden, types.ErrPermission(message))
}
