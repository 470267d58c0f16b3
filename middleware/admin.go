package middleware

import (
	"net/http"

	"github.com/bookhaven/backend/policy"
)

// RequireAdmin gates a route group behind the admin policy. Must run
// after Auth. Admin listings are not secret, so an insufficient role gets
// a plain 403 (contrast with single-book reads, which collapse to 404).
func RequireAdmin() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := policy.RequireAdmin(IdentityFromContext(r.Context()))
			switch res.Decision {
			case policy.Allowed:
				next.ServeHTTP(w, r)
			case policy.Forbidden:
				http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
			default:
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			}
		})
	}
}
