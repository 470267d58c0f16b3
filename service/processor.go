package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier tells the external PDF processor about a new or changed book
// file so it can download it and produce a summary and embeddings.
// Delivery is best-effort, at most once: implementations never return an
// error and never block the caller's response. The book record is durably
// persisted before Notify runs, so a lost notification loses only the
// enrichment, never the book.
type Notifier interface {
	Notify(ctx context.Context, n ProcessRequest)
}

// ProcessRequest is the payload sent to the processor.
type ProcessRequest struct {
	BookID       string   `json:"bookId"`
	PDFURL       string   `json:"pdfUrl"`
	DirectPDFURL string   `json:"directPdfUrl,omitempty"`
	BookName     string   `json:"bookName"`
	AuthorNames  []string `json:"authorNames"`
}

// ProcessorClient posts trigger requests to the processor service.
type ProcessorClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewProcessorClient returns a client for the processor at baseURL. If
// baseURL or apiKey is empty the client stays usable but Notify becomes a
// logged no-op.
func NewProcessorClient(baseURL, apiKey string, log *logrus.Logger) *ProcessorClient {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProcessorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Notify sends the trigger request. All failures (missing config,
// transport errors, non-2xx) are logged and swallowed; callers neither
// wait on nor learn about the outcome.
func (c *ProcessorClient) Notify(ctx context.Context, n ProcessRequest) {
	entry := c.log.WithFields(logrus.Fields{"bookId": n.BookID, "book": n.BookName})
	if c.baseURL == "" || c.apiKey == "" {
		entry.Warn("pdf processor not configured; skipping notification")
		return
	}
	body, err := json.Marshal(n)
	if err != nil {
		entry.WithError(err).Error("pdf processor: encode request")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/trigger-pdf-process", bytes.NewReader(body))
	if err != nil {
		entry.WithError(err).Error("pdf processor: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		entry.WithError(err).Error("pdf processor: request failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		entry.WithField("status", resp.StatusCode).Error("pdf processor: non-2xx response")
		return
	}
	entry.Info("pdf processor notified")
}
