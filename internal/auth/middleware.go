package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/itemdesk-be/internal/models"
)

// UserLookup resolves the user a token refers to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// ErrorWriter renders a failed request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate resolves the bearer token on each request into a caller
// context. It performs exactly one user lookup per request.
func Authenticate(tokens *TokenManager, users UserLookup, fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				fail(w, r, models.NewError(models.ErrUnauthenticated, "Authentication required"))
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				fail(w, r, models.NewError(models.ErrInvalidCredential, "Invalid token"))
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					fail(w, r, models.NewError(models.ErrInvalidCredential, "Invalid token"))
					return
				}
				fail(w, r, err)
				return
			}

			ctx := WithCaller(r.Context(), models.CallerFromUser(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole only lets through callers whose role is in roles. It must be
// mounted after Authenticate.
func RequireRole(fail ErrorWriter, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := HasRole[struct{}](roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok || !allowed(caller, struct{}{}) {
				fail(w, r, models.NewError(models.ErrForbidden, "Insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsRune(token, ' ') {
		return "", false
	}
	return token, true
}
