package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/passreg/passreg/internal/model"
	"github.com/passreg/passreg/internal/service"
	"github.com/passreg/passreg/internal/store"
)

type contextKeyAuth string

// AuthAccountKey is the context key for the authenticated account.
const AuthAccountKey contextKeyAuth = "auth_account"

// Authenticate returns an HTTP middleware that validates the request's JWT
// bearer credential and resolves it to a live account. Requests without a
// valid token, or whose account has been deactivated since the token was
// issued, are rejected with 403.
//
// On success the full account record is attached to the request context so
// self-service handlers can read it without another lookup.
func Authenticate(authSvc *service.AuthService, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusForbidden, "Authentication credentials were not provided")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			principal, err := authSvc.ValidateToken(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Invalid token")
				return
			}

			acc, err := st.GetAccount(r.Context(), principal.UserID)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Invalid token")
				return
			}
			if !acc.IsActive {
				writeAuthError(w, http.StatusForbidden, "This user has been deactivated")
				return
			}

			ctx := context.WithValue(r.Context(), AuthAccountKey, acc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff returns an HTTP middleware that enforces staff-level access.
// It must be used after Authenticate in the middleware chain.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc := GetAccount(r.Context())
			if acc == nil || (!acc.IsStaff && !acc.IsSuperuser) {
				writeAuthError(w, http.StatusForbidden, "Staff access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAccount extracts the authenticated account from the context. Returns nil
// if no account is present (i.e., unauthenticated request).
func GetAccount(ctx context.Context) *model.Account {
	if acc, ok := ctx.Value(AuthAccountKey).(*model.Account); ok {
		return acc
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with the handler package
	w.Write([]byte(`{"error":{"code":` + strconv.Itoa(status) + `,"message":"` + message + `"}}`))
}
