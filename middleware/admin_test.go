package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookhaven/backend/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		noSession  bool
		wantStatus int
	}{
		{name: "no session", noSession: true, wantStatus: http.StatusUnauthorized},
		{name: "user role", role: models.RoleUser, wantStatus: http.StatusForbidden},
		{name: "admin role", role: models.RoleAdmin, wantStatus: http.StatusOK},
		{name: "super admin role", role: models.RoleSuperAdmin, wantStatus: http.StatusOK},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if !tt.noSession {
				token := signToken(t, testSecret, primitive.NewObjectID(), tt.role, time.Hour)
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			// Chained the way main wires it: Auth resolves, RequireAdmin gates.
			OptionalAuth(testSecret)(RequireAdmin()(next)).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
