package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookhaven/backend/policy"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const identityKey contextKey = "identity"

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Auth requires a valid session token and puts the resolved identity in
// the request context.
func Auth(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, errMsg := identityFromRequest(r, jwtSecret)
			if id == nil {
				http.Error(w, errMsg, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves a session when one is presented but never rejects
// the request. Used on the dual-auth summary endpoint, where the bearer
// token may be the processor API key instead of a JWT; the handler decides
// via the policy package.
func OptionalAuth(jwtSecret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, _ := identityFromRequest(r, jwtSecret); id != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromRequest(r *http.Request, jwtSecret string) (*policy.Identity, string) {
	token := BearerToken(r)
	if token == "" {
		return nil, `{"error":"missing authorization header"}`
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, `{"error":"invalid or expired token"}`
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, `{"error":"invalid token"}`
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, `{"error":"invalid user id"}`
	}
	return &policy.Identity{ID: userID, Email: claims.Email, Role: claims.Role}, ""
}

// BearerToken returns the bearer token from the Authorization header, or
// "" when absent or malformed.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// IdentityFromContext returns the identity placed by Auth/OptionalAuth,
// or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *policy.Identity {
	id, _ := ctx.Value(identityKey).(*policy.Identity)
	return id
}
