package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/policy"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID primitive.ObjectID, role string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID.Hex(),
		Email:  "someone@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantRole   string
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + signToken(t, "other-secret", userID, models.RoleUser, time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, userID, models.RoleUser, -time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, userID, models.RoleAdmin, time.Hour),
			wantStatus: http.StatusOK,
			wantRole:   models.RoleAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *policy.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			Auth(testSecret)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, got)
				assert.Equal(t, userID, got.ID)
				assert.Equal(t, tt.wantRole, got.Role)
			}
		})
	}
}

func TestOptionalAuthPassesAnonymousThrough(t *testing.T) {
	var got *policy.Identity
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = IdentityFromContext(r.Context())
	})

	// A processor API key is not a JWT; the request must still reach the
	// handler, with no identity attached.
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/books/x/summary", nil)
	req.Header.Set("Authorization", "Bearer processor-api-key")
	OptionalAuth(testSecret)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.Nil(t, got)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(req))

	req.Header.Set("Authorization", "abc123")
	assert.Equal(t, "", BearerToken(req))
}
