package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/icco/yamdb/models"
)

// UserLoader fetches the user a verified token refers to.
type UserLoader func(ctx context.Context, id uint) (*models.User, error)

// Middleware resolves the bearer token, if any, into the request's caller.
// Requests without an Authorization header continue anonymously; a header
// carrying an invalid token is rejected with 401.
func Middleware(issuer *Issuer, load UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, tokenStr, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
				unauthorized(w, "Authorization header must be 'Bearer <token>'.")
				return
			}

			claims, err := issuer.Parse(strings.TrimSpace(tokenStr))
			if err != nil {
				logger.DebugContext(r.Context(), "Rejected bearer token", slog.Any("error", err))
				unauthorized(w, "Given token not valid for any token type")
				return
			}

			u, err := load(r.Context(), claims.UserID)
			if err != nil {
				logger.DebugContext(r.Context(), "Token user not found", slog.Uint64("user_id", uint64(claims.UserID)), slog.Any("error", err))
				unauthorized(w, "User not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
