package middleware

import (
	"context"
	"net/http"
	"strings"

	"policygen/internal/domain/auth"
	"policygen/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Authenticate validates the bearer token and attaches the caller's
// identity to the request context. Access tokens are short-lived, so
// revocation is enforced at refresh time rather than per request.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", GetRequestID(r.Context()))
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid token", GetRequestID(r.Context()))
				return
			}

			user := auth.UserContext{
				UserID:    claims.UserID,
				Email:     claims.Email,
				Admin:     claims.Admin,
				SessionID: claims.SessionID,
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok || !user.Admin {
			api.Fail(w, http.StatusForbidden, "forbidden", "admin access required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
