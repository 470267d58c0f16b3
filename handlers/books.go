package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/policy"
	"github.com/bookhaven/backend/service"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookStore is the storage surface the book handlers use. *store.DB
// implements it; tests substitute a fake so the policy-to-status mapping
// can be exercised without a database.
type BookStore interface {
	BooksVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	DeleteBook(ctx context.Context, id primitive.ObjectID) (s3Key string, err error)
	UpdateBookVisibility(ctx context.Context, id primitive.ObjectID, isPublic bool) error
	RecordRead(ctx context.Context, userID primitive.ObjectID, book *models.Book) error
}

type BooksHandler struct {
	DB BookStore
	S3 *service.S3Service
}

// List returns the books visible to the caller: owned plus public.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	books, err := h.DB.BooksVisibleTo(r.Context(), id.ID)
	if err != nil {
		http.Error(w, `{"error":"failed to list books"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

// BookContentResponse is the policy-gated single-book payload. FileURL is
// a short-lived presigned URL.
type BookContentResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Authors         []string `json:"authors,omitempty"`
	FileURL         string   `json:"fileUrl"`
	AISummary       string   `json:"aiSummary,omitempty"`
	AISummaryStatus string   `json:"aiSummaryStatus"`
}

// Get returns a book's content fields when the caller may read it. A
// private book the caller does not own answers 404, same as a missing
// one, so its existence does not leak.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	book, ok := h.visibleBook(w, r, id)
	if !ok {
		return
	}
	fileURL := ""
	if h.S3 != nil && book.S3Key != "" {
		url, err := h.S3.PresignedGetURL(r.Context(), book.S3Key, 15*time.Minute, "")
		if err != nil {
			http.Error(w, `{"error":"failed to generate file url"}`, http.StatusInternalServerError)
			return
		}
		fileURL = url
	}
	if err := h.DB.RecordRead(r.Context(), id.ID, book); err != nil {
		logrus.WithError(err).WithField("bookId", book.ID.Hex()).Warn("record read event")
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BookContentResponse{
		ID:              book.ID.Hex(),
		Name:            book.Name,
		Authors:         book.Authors,
		FileURL:         fileURL,
		AISummary:       book.AISummary,
		AISummaryStatus: book.AISummaryStatus,
	})
}

type DownloadResponse struct {
	URL string `json:"url"`
}

// Download returns a presigned URL naming the original file, under the
// same visibility policy as Get.
func (h *BooksHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	book, ok := h.visibleBook(w, r, id)
	if !ok {
		return
	}
	if h.S3 == nil {
		http.Error(w, `{"error":"download not configured"}`, http.StatusServiceUnavailable)
		return
	}
	url, err := h.S3.PresignedGetURL(r.Context(), book.S3Key, 15*time.Minute, book.OriginalName)
	if err != nil {
		http.Error(w, `{"error":"failed to generate download url"}`, http.StatusInternalServerError)
		return
	}
	if err := h.DB.RecordRead(r.Context(), id.ID, book); err != nil {
		logrus.WithError(err).WithField("bookId", book.ID.Hex()).Warn("record read event")
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DownloadResponse{URL: url})
}

// visibleBook loads the path book and applies the read policy. On any
// negative outcome it has already written the response; denied access and
// absent books are indistinguishable to the caller.
func (h *BooksHandler) visibleBook(w http.ResponseWriter, r *http.Request, id *policy.Identity) (*models.Book, bool) {
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return nil, false
	}
	book, err := h.DB.BookByID(r.Context(), bookID)
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return nil, false
	}
	if book == nil || !policy.CanReadBook(id, book) {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return nil, false
	}
	return book, true
}

// Delete removes a book and its stored file (admin only).
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	s3Key, err := h.DB.DeleteBook(r.Context(), bookID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"failed to delete book"}`, http.StatusInternalServerError)
		return
	}
	if h.S3 != nil && s3Key != "" {
		_ = h.S3.Delete(r.Context(), s3Key)
	}
	w.WriteHeader(http.StatusNoContent)
}

type PatchVisibilityRequest struct {
	IsPublic bool `json:"isPublic"`
}

// PatchVisibility sets whether a book is public (admin only).
func (h *BooksHandler) PatchVisibility(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	var req PatchVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.UpdateBookVisibility(r.Context(), bookID, req.IsPublic); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"failed to update book"}`, http.StatusInternalServerError)
		return
	}
	book, err := h.DB.BookByID(r.Context(), bookID)
	if err != nil || book == nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}
