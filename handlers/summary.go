package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/policy"
	"github.com/bookhaven/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SummaryHandler serves the one endpoint with two trust paths: the
// external processor posts results back with the pre-shared API key,
// and admins can set a summary by hand with their session. Routed behind
// OptionalAuth so an API-key bearer token is not rejected as a bad JWT.
type SummaryHandler struct {
	DB              *store.DB
	ProcessorAPIKey string
}

type UpdateSummaryRequest struct {
	Summary string `json:"summary"`
}

func (h *SummaryHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	res := policy.AuthorizeServiceOrAdmin(
		middleware.BearerToken(r),
		h.ProcessorAPIKey,
		middleware.IdentityFromContext(r.Context()),
	)
	switch res.Decision {
	case policy.Allowed:
	case policy.Forbidden:
		http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
		return
	default:
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	var req UpdateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Summary) == "" {
		http.Error(w, `{"error":"summary is required"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.UpdateBookSummary(r.Context(), bookID, req.Summary); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"failed to update summary"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "summary updated"})
}
