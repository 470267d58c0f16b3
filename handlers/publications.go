package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicationsHandler serves the admin publication surface; routing puts
// it behind RequireAdmin.
type PublicationsHandler struct {
	DB *store.DB
}

type CreatePublicationRequest struct {
	Name      string   `json:"name"`
	Publisher string   `json:"publisher"`
	BookIDs   []string `json:"bookIds"`
}

func (h *PublicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePublicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}
	bookIDs := make([]primitive.ObjectID, 0, len(req.BookIDs))
	for _, s := range req.BookIDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
			return
		}
		bookIDs = append(bookIDs, id)
	}
	pub := &models.Publication{
		Name:      req.Name,
		Publisher: req.Publisher,
		BookIDs:   bookIDs,
		CreatedAt: time.Now(),
	}
	id, err := h.DB.CreatePublication(r.Context(), pub)
	if err != nil {
		http.Error(w, `{"error":"failed to create publication"}`, http.StatusInternalServerError)
		return
	}
	pub.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(pub)
}

// ReadersResponse is the publication readers payload: stats always,
// readers page unless statsOnly=true.
type ReadersResponse struct {
	Stats   *models.PublicationStats `json:"stats"`
	Readers *PageResponse            `json:"readers,omitempty"`
}

// Readers returns readership stats for a publication and, unless
// statsOnly=true, one page of its distinct readers.
func (h *PublicationsHandler) Readers(w http.ResponseWriter, r *http.Request) {
	pubID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid publication id"}`, http.StatusBadRequest)
		return
	}
	pub, err := h.DB.PublicationByID(r.Context(), pubID)
	if err != nil {
		http.Error(w, `{"error":"failed to load publication"}`, http.StatusInternalServerError)
		return
	}
	if pub == nil {
		http.Error(w, `{"error":"publication not found"}`, http.StatusNotFound)
		return
	}
	stats, err := h.DB.PublicationStats(r.Context(), pub)
	if err != nil {
		http.Error(w, `{"error":"failed to load publication stats"}`, http.StatusInternalServerError)
		return
	}
	resp := ReadersResponse{Stats: stats}
	if r.URL.Query().Get("statsOnly") != "true" {
		p := ParsePagination(r.URL.Query())
		readers, total, err := h.DB.PublicationReaders(r.Context(), pubID, p.Page, p.Limit)
		if err != nil {
			http.Error(w, `{"error":"failed to list readers"}`, http.StatusInternalServerError)
			return
		}
		resp.Readers = &PageResponse{Data: readers, Total: total, Page: p.Page, Limit: p.Limit}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
