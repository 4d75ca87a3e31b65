package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-notify-api/internal/domain"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth returns middleware that requires "Authorization: Bearer <token>" and
// injects the resolved user into the request context.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			if errors.Is(err, domain.ErrUnauthorized) {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("authenticate request")
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// bearerToken accepts exactly two space-separated parts with the Bearer scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user set by Auth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}
