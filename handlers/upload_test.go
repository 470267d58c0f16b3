package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookhaven/backend/middleware"
	"github.com/bookhaven/backend/models"
	"github.com/bookhaven/backend/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type captureNotifier struct {
	got chan service.ProcessRequest
}

func (c *captureNotifier) Notify(ctx context.Context, n service.ProcessRequest) {
	c.got <- n
}

// fakeUploadStore records what the handler persisted.
type fakeUploadStore struct {
	inserted      *models.Book
	resolvedNames []string
	resolvedIDs   []primitive.ObjectID
}

func (f *fakeUploadStore) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	f.inserted = book
	return primitive.NewObjectID(), nil
}

func (f *fakeUploadStore) EnsureAuthorsByName(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	f.resolvedNames = names
	f.resolvedIDs = make([]primitive.ObjectID, len(names))
	for i := range names {
		f.resolvedIDs[i] = primitive.NewObjectID()
	}
	return f.resolvedIDs, nil
}

type fakeBlobStore struct{}

func (fakeBlobStore) Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error) {
	return prefix + "fixed-key.pdf", nil
}

func (fakeBlobStore) PresignedGetURL(ctx context.Context, key string, expiry time.Duration, responseFilename string) (string, error) {
	return "https://bucket.example/" + key + "?signed", nil
}

func (fakeBlobStore) DirectURL(key string) string {
	return "https://bucket.example/" + key
}

func uploadRouter(h *UploadHandler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(testJWTSecret))
		r.Post("/api/admin/books", h.Upload)
	})
	return r
}

func multipartUpload(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "test.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, models.RoleAdmin))
	return req
}

func TestUploadResolvesAuthorNames(t *testing.T) {
	db := &fakeUploadStore{}
	h := &UploadHandler{DB: db, S3: fakeBlobStore{}}

	req := multipartUpload(t, map[string]string{
		"name":    "On Computable Numbers",
		"authors": "Alan Turing, Alonzo Church",
	})
	rec := httptest.NewRecorder()
	uploadRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, db.inserted)
	assert.Equal(t, []string{"Alan Turing", "Alonzo Church"}, db.resolvedNames)
	assert.Equal(t, db.resolvedIDs, db.inserted.AuthorIDs)
}

func TestUploadAcceptsExplicitAuthorIDs(t *testing.T) {
	want := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	db := &fakeUploadStore{}
	h := &UploadHandler{DB: db, S3: fakeBlobStore{}}

	req := multipartUpload(t, map[string]string{
		"name":      "The Art of Computer Programming",
		"authors":   "Donald Knuth",
		"authorIds": want[0].Hex() + "," + want[1].Hex(),
	})
	rec := httptest.NewRecorder()
	uploadRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, db.inserted)
	assert.Equal(t, want, db.inserted.AuthorIDs)
	// Explicit ids win; names are kept for display only.
	assert.Nil(t, db.resolvedNames)
}

func TestUploadRejectsInvalidAuthorIDs(t *testing.T) {
	db := &fakeUploadStore{}
	h := &UploadHandler{DB: db, S3: fakeBlobStore{}}

	req := multipartUpload(t, map[string]string{
		"name":      "Broken",
		"authorIds": "not-an-object-id",
	})
	rec := httptest.NewRecorder()
	uploadRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid author id")
	assert.Nil(t, db.inserted)
}

func TestDispatchNotify(t *testing.T) {
	notifier := &captureNotifier{got: make(chan service.ProcessRequest, 1)}
	h := &UploadHandler{Notifier: notifier}

	book := &models.Book{
		ID:      primitive.NewObjectID(),
		Name:    "Distributed Systems",
		Authors: []string{"Tanenbaum", "van Steen"},
		S3Key:   "books/abc.pdf",
	}
	h.dispatchNotify(context.Background(), book)

	select {
	case n := <-notifier.got:
		assert.Equal(t, book.ID.Hex(), n.BookID)
		assert.Equal(t, "Distributed Systems", n.BookName)
		assert.Equal(t, []string{"Tanenbaum", "van Steen"}, n.AuthorNames)
	case <-time.After(time.Second):
		t.Fatal("notification was not dispatched")
	}
}

func TestDispatchNotifyNilNotifier(t *testing.T) {
	h := &UploadHandler{}
	// Must be a no-op, not a panic.
	h.dispatchNotify(context.Background(), &models.Book{ID: primitive.NewObjectID()})
}

func TestSplitAndTrim(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b "))
	require.Nil(t, splitAndTrim(""))
	require.Nil(t, splitAndTrim(" , ,"))
}

func TestParseObjectIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	ids, err := parseObjectIDs(a.Hex() + " , " + b.Hex())
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{a, b}, ids)

	ids, err = parseObjectIDs("")
	require.NoError(t, err)
	require.Nil(t, ids)

	_, err = parseObjectIDs("zzz")
	require.Error(t, err)
}
