package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"edulab-backend-go/internal/models"
	"edulab-backend-go/internal/services"
	"edulab-backend-go/internal/store"
)

type contextKey string

const ctxUser contextKey = "user"

// WithAuth verifies the bearer token and re-fetches the account from the
// store. The role stored in the token is never trusted for authorization:
// gates run against the user's current role, and a live token of a deleted
// user fails authentication.
func WithAuth(tokens services.TokenService, st store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			usr, err := st.UserByID(claims.UserID)
			if errors.Is(err, store.ErrNotFound) {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUser, usr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentUser(r *http.Request) (models.User, bool) {
	usr, ok := r.Context().Value(ctxUser).(models.User)
	return usr, ok
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

func RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			usr, ok := CurrentUser(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
			if !allowed[usr.Role] {
				WriteError(w, http.StatusForbidden, "Not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
