package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/service"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const contentTypePDF = "application/pdf"

// Presigned URL handed to the processor; generous so a queued job can
// still download.
const processorURLExpiry = time.Hour

// UploadStore is the storage surface the upload handler uses. *store.DB
// implements it.
type UploadStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	EnsureAuthorsByName(ctx context.Context, names []string) ([]primitive.ObjectID, error)
}

// BlobStore is the object-storage surface for uploads and presigning,
// implemented by *service.S3Service.
type BlobStore interface {
	Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error)
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration, responseFilename string) (string, error)
	DirectURL(key string) string
}

type UploadHandler struct {
	DB       UploadStore
	S3       BlobStore
	Notifier service.Notifier
	MaxBytes int64
}

type UploadResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Upload creates a book (admin only): stores the PDF, persists the
// record, then notifies the processor. The notification is dispatched
// after the write commits and never affects the response.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		http.Error(w, `{"error":"failed to parse multipart form"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"missing file"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(header.Filename)))
	partContentType := header.Header.Get("Content-Type")
	if ext != ".pdf" && !strings.HasPrefix(partContentType, contentTypePDF) {
		http.Error(w, `{"error":"only pdf files are allowed"}`, http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	authors := splitAndTrim(r.FormValue("authors"))
	isPublic := r.FormValue("isPublic") == "true"
	requiresPremium := r.FormValue("requiresPremium") == "true"

	var publicationID primitive.ObjectID
	if v := strings.TrimSpace(r.FormValue("publicationId")); v != "" {
		publicationID, err = primitive.ObjectIDFromHex(v)
		if err != nil {
			http.Error(w, `{"error":"invalid publication id"}`, http.StatusBadRequest)
			return
		}
	}
	authorIDs, err := parseObjectIDs(r.FormValue("authorIds"))
	if err != nil {
		http.Error(w, `{"error":"invalid author id"}`, http.StatusBadRequest)
		return
	}

	if h.S3 == nil {
		http.Error(w, `{"error":"upload not configured (missing S3)"}`, http.StatusServiceUnavailable)
		return
	}

	// Author names without explicit IDs still link the book to author
	// documents, so the author stats endpoints see it.
	if len(authorIDs) == 0 && len(authors) > 0 {
		authorIDs, err = h.DB.EnsureAuthorsByName(r.Context(), authors)
		if err != nil {
			http.Error(w, `{"error":"failed to resolve authors"}`, http.StatusInternalServerError)
			return
		}
	}

	s3Key, err := h.S3.Upload(r.Context(), "books/", header.Filename, file, contentTypePDF)
	if err != nil {
		http.Error(w, `{"error":"failed to upload to storage"}`, http.StatusInternalServerError)
		return
	}

	now := time.Now()
	book := &models.Book{
		OwnerID:         id.ID,
		Name:            name,
		Authors:         authors,
		AuthorIDs:       authorIDs,
		PublicationID:   publicationID,
		IsPublic:        isPublic,
		RequiresPremium: requiresPremium,
		Format:          "pdf",
		S3Key:           s3Key,
		OriginalName:    header.Filename,
		AISummaryStatus: models.SummaryStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	bookID, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		http.Error(w, `{"error":"failed to save book record"}`, http.StatusInternalServerError)
		return
	}
	book.ID = bookID

	h.dispatchNotify(r.Context(), book)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{ID: bookID.Hex(), Name: book.Name})
}

// dispatchNotify fires the processor notification on its own goroutine
// with a detached context, so it survives the response being written and
// its outcome cannot reach the caller.
func (h *UploadHandler) dispatchNotify(ctx context.Context, book *models.Book) {
	if h.Notifier == nil {
		return
	}
	pdfURL := ""
	directURL := ""
	if h.S3 != nil {
		url, err := h.S3.PresignedGetURL(ctx, book.S3Key, processorURLExpiry, "")
		if err != nil {
			logrus.WithError(err).WithField("bookId", book.ID.Hex()).Error("presign for processor")
		} else {
			pdfURL = url
		}
		directURL = h.S3.DirectURL(book.S3Key)
	}
	req := service.ProcessRequest{
		BookID:       book.ID.Hex(),
		PDFURL:       pdfURL,
		DirectPDFURL: directURL,
		BookName:     book.Name,
		AuthorNames:  book.Authors,
	}
	go h.Notifier.Notify(context.WithoutCancel(ctx), req)
}

func parseObjectIDs(s string) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, part := range splitAndTrim(s) {
		id, err := primitive.ObjectIDFromHex(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
