package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mirotrak/mirotrak/internal/auth"
)

// minAuthDuration is the minimum time spent on a failed key check.
const minAuthDuration = 200 * time.Millisecond

const msgUnauthorized = "Clé d'administration invalide"

// AdminAuthConfig holds configuration for the admin key middleware.
type AdminAuthConfig struct {
	Logger *slog.Logger
	// KeyHash is the argon2id hash of the admin key. Empty disables the check.
	KeyHash string
}

// AdminAuth returns a middleware that requires the admin key on every request.
// The key is read from "Authorization: Bearer <key>" or "X-API-Key".
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.KeyHash == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			key := extractAdminKey(r)
			reason := ""
			if key == "" {
				reason = "missing_key"
			} else {
				ok, err := auth.VerifyKey(key, cfg.KeyHash)
				switch {
				case err != nil:
					reason = "invalid_hash"
				case !ok:
					reason = "invalid_key"
				}
			}

			if reason == "" {
				next.ServeHTTP(w, r)
				return
			}

			if elapsed := time.Since(start); elapsed < minAuthDuration {
				time.Sleep(minAuthDuration - elapsed)
			}

			cfg.Logger.Warn("authentication failed",
				slog.String("reason", reason),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", msgUnauthorized)
		})
	}
}

func extractAdminKey(r *http.Request) string {
	if key := auth.ExtractBearer(r.Header.Get("Authorization")); key != "" {
		return key
	}
	return r.Header.Get("X-API-Key")
}
