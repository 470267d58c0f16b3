package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testJWTSecret    = "test-secret"
	testProcessorKey = "processor-key"
)

func sessionToken(t *testing.T, role string) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: primitive.NewObjectID().Hex(),
		Email:  "someone@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// summaryRouter wires the endpoint the way main does: OptionalAuth, so a
// processor API key in the Authorization header is not rejected as a bad
// JWT before the handler can check it.
func summaryRouter() chi.Router {
	h := &SummaryHandler{DB: nil, ProcessorAPIKey: testProcessorKey}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(testJWTSecret))
		r.Patch("/api/admin/books/{id}/summary", h.UpdateSummary)
	})
	return r
}

// These cases all resolve before any storage access, so the handler runs
// with a nil DB.
func TestUpdateSummaryAuth(t *testing.T) {
	bookID := primitive.NewObjectID().Hex()

	tests := []struct {
		name       string
		bearer     string
		body       string
		wantStatus int
	}{
		{
			name:       "no credentials",
			bearer:     "",
			body:       `{"summary":"a fine book"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong api key",
			bearer:     "not-the-key",
			body:       `{"summary":"a fine book"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user session",
			bearer:     sessionToken(t, models.RoleUser),
			body:       `{"summary":"a fine book"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid api key missing summary",
			bearer:     testProcessorKey,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "valid api key blank summary",
			bearer:     testProcessorKey,
			body:       `{"summary":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "valid api key invalid json",
			bearer:     testProcessorKey,
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/admin/books/"+bookID+"/summary", strings.NewReader(tt.body))
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()
			summaryRouter().ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestUpdateSummaryInvalidBookID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/books/not-hex/summary", strings.NewReader(`{"summary":"x"}`))
	req.Header.Set("Authorization", "Bearer "+testProcessorKey)
	rec := httptest.NewRecorder()
	summaryRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
