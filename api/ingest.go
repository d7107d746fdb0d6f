package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/koopa0/secondbrain/internal/extract"
	"github.com/koopa0/secondbrain/internal/ingest"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
)

// maxFetchBytes caps how much of a remote page is read.
const maxFetchBytes = 10 << 20 // 10 MiB

// Ingester runs the ingestion pipeline for one source.
// *ingest.Pipeline satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, src ingest.Source) (uuid.UUID, error)
}

// IngestHandler handles ingestion endpoints.
type IngestHandler struct {
	pipeline Ingester
	client   *http.Client
	logger   log.Logger
}

// NewIngestHandler creates a new ingestion handler. client fetches
// remote pages for URL ingestion; nil means http.DefaultClient.
func NewIngestHandler(pipeline Ingester, client *http.Client, logger log.Logger) *IngestHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &IngestHandler{pipeline: pipeline, client: client, logger: logger}
}

// RegisterRoutes registers ingestion routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest/file", h.handleFile)
	mux.HandleFunc("POST /api/ingest/url", h.handleURL)
}

// fileRequest is the body for POST /api/ingest/file.
type fileRequest struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	SourceType string `json:"sourceType"`
	Locator    string `json:"locator"`
}

// ingestResponse acknowledges a completed ingestion.
type ingestResponse struct {
	Message string    `json:"message"`
	DocID   uuid.UUID `json:"docId"`
}

// handleFile ingests pre-extracted text content.
func (h *IngestHandler) handleFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", "")
		return
	}
	if req.SourceType == "" {
		req.SourceType = string(knowledge.SourceText)
	}
	sourceType, err := knowledge.ParseSourceType(req.SourceType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sourceType", err.Error())
		return
	}

	docID, err := h.pipeline.Ingest(r.Context(), ingest.Source{
		Type:    sourceType,
		Title:   req.Title,
		Locator: req.Locator,
		Text:    req.Text,
	})
	if err != nil {
		h.logger.Error("file ingestion failed", "title", req.Title, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Message: "File ingested successfully", DocID: docID})
}

// urlRequest is the body for POST /api/ingest/url. HTML, when set,
// skips the fetch and extracts from the supplied markup instead.
type urlRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// handleURL fetches a page, extracts its readable text, and ingests it.
func (h *IngestHandler) handleURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid URL", err.Error())
		return
	}

	var (
		page extract.Page
		err  error
	)
	if req.HTML != "" {
		page, err = extract.Web(strings.NewReader(req.HTML), req.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid HTML", err.Error())
			return
		}
	} else {
		page, err = h.fetch(r.Context(), req.URL)
		if err != nil {
			h.logger.Error("URL ingestion failed", "url", req.URL, "error", err)
			writeError(w, http.StatusBadGateway, err.Error(), "")
			return
		}
	}

	docID, err := h.pipeline.Ingest(r.Context(), ingest.Source{
		Type:    knowledge.SourceWeb,
		Title:   page.Title,
		Locator: req.URL,
		Text:    page.Text,
	})
	if err != nil {
		h.logger.Error("URL ingestion failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{Message: "URL ingested successfully", DocID: docID})
}

// fetch downloads a page and extracts its readable content.
func (h *IngestHandler) fetch(ctx context.Context, pageURL string) (extract.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return extract.Page{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return extract.Page{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return extract.Page{}, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	return extract.Web(http.MaxBytesReader(nil, resp.Body, maxFetchBytes), pageURL)
}
