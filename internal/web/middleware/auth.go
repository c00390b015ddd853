package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/buyside/internal/config"
	"github.com/JonMunkholm/buyside/internal/logging"
)

// APIKeyAuth guards administrative routes such as dataset reload. The key is
// read from X-API-Key or an "Authorization: Bearer" header. When
// RequireAPIKey is false every request passes; when it is true and no keys
// are configured every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	digests := make([][sha256.Size]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		digests = append(digests, sha256.Sum256([]byte(k)))
	}

	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logging.FromContext(r.Context()).With("path", r.URL.Path, "remote_addr", r.RemoteAddr)

			key := presentedKey(r)
			switch {
			case key == "":
				log.Warn("auth: missing API key")
				writeAuthError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
			case !matchesAny(sha256.Sum256([]byte(key)), digests):
				log.Warn("auth: invalid API key")
				writeAuthError(w, http.StatusForbidden, "invalid API key", "AUTH002")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// matchesAny compares against every digest so timing does not depend on
// which key matched.
func matchesAny(d [sha256.Size]byte, digests [][sha256.Size]byte) bool {
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(d[:], digests[i][:])
	}
	return found == 1
}

// writeAuthError writes the same JSON shape as the web error responses.
func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
