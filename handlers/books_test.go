package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeBookStore implements BookStore over an in-memory map.
type fakeBookStore struct {
	books     map[primitive.ObjectID]*models.Book
	deleteErr error
}

func (f *fakeBookStore) BooksVisibleTo(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	var out []models.Book
	for _, b := range f.books {
		if b.OwnerID == userID || b.IsPublic {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookStore) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	return f.books[id], nil
}

func (f *fakeBookStore) DeleteBook(ctx context.Context, id primitive.ObjectID) (string, error) {
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	return "books/deleted.pdf", nil
}

func (f *fakeBookStore) UpdateBookVisibility(ctx context.Context, id primitive.ObjectID, isPublic bool) error {
	return nil
}

func (f *fakeBookStore) RecordRead(ctx context.Context, userID primitive.ObjectID, book *models.Book) error {
	return nil
}

func sessionTokenFor(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: userID.Hex(),
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

func booksRouter(db BookStore) chi.Router {
	h := &BooksHandler{DB: db, S3: nil}
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(testJWTSecret))
		r.Get("/api/books/{id}", h.Get)
		r.Get("/api/books/{id}/download", h.Download)
		r.Delete("/api/admin/books/{id}", h.Delete)
	})
	return r
}

// An inaccessible book and a missing book must be indistinguishable: same
// status, same body. 403 here would leak that the book exists.
func TestGetBookHidesPrivateBooks(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	private := &models.Book{ID: primitive.NewObjectID(), OwnerID: owner, Name: "private notes", IsPublic: false}
	public := &models.Book{ID: primitive.NewObjectID(), OwnerID: owner, Name: "field guide", IsPublic: true}
	db := &fakeBookStore{books: map[primitive.ObjectID]*models.Book{
		private.ID: private,
		public.ID:  public,
	}}
	missingID := primitive.NewObjectID()

	get := func(bookID primitive.ObjectID, caller primitive.ObjectID) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/books/"+bookID.Hex(), nil)
		req.Header.Set("Authorization", "Bearer "+sessionTokenFor(t, caller, models.RoleUser))
		rec := httptest.NewRecorder()
		booksRouter(db).ServeHTTP(rec, req)
		return rec
	}

	denied := get(private.ID, stranger)
	assert.Equal(t, http.StatusNotFound, denied.Code)

	missing := get(missingID, stranger)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String(), denied.Body.String())

	asOwner := get(private.ID, owner)
	assert.Equal(t, http.StatusOK, asOwner.Code)
	assert.Contains(t, asOwner.Body.String(), "private notes")

	asStranger := get(public.ID, stranger)
	assert.Equal(t, http.StatusOK, asStranger.Code)
}

func TestGetBookRejectsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/books/0123456789abcdef01234567", nil)
	rec := httptest.NewRecorder()
	booksRouter(&fakeBookStore{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetBookInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/books/not-a-hex-id", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, models.RoleUser))
	rec := httptest.NewRecorder()
	booksRouter(&fakeBookStore{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadRejectsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/books/0123456789abcdef01234567/download", nil)
	rec := httptest.NewRecorder()
	booksRouter(&fakeBookStore{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteBookErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		wantStatus int
	}{
		{name: "deleted", deleteErr: nil, wantStatus: http.StatusNoContent},
		{name: "absent book", deleteErr: mongo.ErrNoDocuments, wantStatus: http.StatusNotFound},
		{name: "storage failure", deleteErr: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeBookStore{deleteErr: tt.deleteErr}
			req := httptest.NewRequest(http.MethodDelete, "/api/admin/books/"+primitive.NewObjectID().Hex(), nil)
			rec := httptest.NewRecorder()
			booksRouter(db).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
