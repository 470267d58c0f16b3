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

// AuthorsHandler serves the admin author surface; routing puts it behind
// RequireAdmin.
type AuthorsHandler struct {
	DB *store.DB
}

type CreateAuthorRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}
	author := &models.Author{Name: req.Name, Bio: req.Bio, CreatedAt: time.Now()}
	id, err := h.DB.CreateAuthor(r.Context(), author)
	if err != nil {
		http.Error(w, `{"error":"failed to create author"}`, http.StatusInternalServerError)
		return
	}
	author.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(author)
}

// List returns one page of authors, each with aggregate stats.
func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r.URL.Query())
	authors, total, err := h.DB.ListAuthors(r.Context(), p.Page, p.Limit)
	if err != nil {
		http.Error(w, `{"error":"failed to list authors"}`, http.StatusInternalServerError)
		return
	}
	stats := make([]models.AuthorStats, 0, len(authors))
	for i := range authors {
		s, err := h.DB.AuthorStats(r.Context(), &authors[i])
		if err != nil {
			http.Error(w, `{"error":"failed to load author stats"}`, http.StatusInternalServerError)
			return
		}
		stats = append(stats, *s)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PageResponse{Data: stats, Total: total, Page: p.Page, Limit: p.Limit})
}

// Books returns one page of an author's books with per-book reader counts.
func (h *AuthorsHandler) Books(w http.ResponseWriter, r *http.Request) {
	authorID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid author id"}`, http.StatusBadRequest)
		return
	}
	author, err := h.DB.AuthorByID(r.Context(), authorID)
	if err != nil {
		http.Error(w, `{"error":"failed to load author"}`, http.StatusInternalServerError)
		return
	}
	if author == nil {
		http.Error(w, `{"error":"author not found"}`, http.StatusNotFound)
		return
	}
	p := ParsePagination(r.URL.Query())
	books, total, err := h.DB.AuthorBooks(r.Context(), authorID, p.Page, p.Limit)
	if err != nil {
		http.Error(w, `{"error":"failed to list author books"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PageResponse{Data: books, Total: total, Page: p.Page, Limit: p.Limit})
}
