package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/staffdir/internal/models"
	"github.com/vaughan-dsouza/staffdir/internal/services"
	"github.com/vaughan-dsouza/staffdir/internal/utils"
)

const msgUnauthenticated = "Please authenticate"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware resolves the bearer token to a user and stores it in the
// request context.
func AuthMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, services.ErrUnauthenticated) {
				utils.JSONError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}
			if err != nil {
				log.ErrorContext(r.Context(), "authenticate", "err", err, "request_id", chimw.GetReqID(r.Context()))
				utils.JSONError(w, http.StatusInternalServerError, "Server error")
				return
			}

			// push user into context
			ctx := context.WithValue(r.Context(), utils.CtxUserKey, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(utils.CtxUserKey).(*models.User)
	return u, ok && u != nil
}

// RequireRole must run after AuthMiddleware. Requests without an
// authenticated user get 401, users lacking every listed role get 403.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, msgUnauthenticated)
				return
			}

			if !user.HasRole(roles...) {
				utils.JSONError(w, http.StatusForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}
