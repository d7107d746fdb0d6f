package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/ingest"
	"github.com/koopa0/secondbrain/internal/knowledge"
	"github.com/koopa0/secondbrain/internal/log"
)

// stubIngester records the source it was given.
type stubIngester struct {
	docID uuid.UUID
	err   error
	got   ingest.Source
}

func (s *stubIngester) Ingest(_ context.Context, src ingest.Source) (uuid.UUID, error) {
	s.got = src
	return s.docID, s.err
}

func ingestMux(p Ingester, client *http.Client) *http.ServeMux {
	mux := http.NewServeMux()
	NewIngestHandler(p, client, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestHandleFile(t *testing.T) {
	pipeline := &stubIngester{docID: uuid.New()}

	rec := postJSON(t, ingestMux(pipeline, nil), "/api/ingest/file",
		`{"text": "note body", "title": "note.txt", "sourceType": "text", "locator": "/uploads/note.txt"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pipeline.docID, resp.DocID)
	assert.Equal(t, "File ingested successfully", resp.Message)

	assert.Equal(t, knowledge.SourceText, pipeline.got.Type)
	assert.Equal(t, "note.txt", pipeline.got.Title)
	assert.Equal(t, "note body", pipeline.got.Text)
}

func TestHandleFileDefaultsSourceType(t *testing.T) {
	pipeline := &stubIngester{}

	rec := postJSON(t, ingestMux(pipeline, nil), "/api/ingest/file", `{"text": "x", "title": "t"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, knowledge.SourceText, pipeline.got.Type)
}

func TestHandleFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"text": "x"}`},
		{"unknown source type", `{"text": "x", "title": "t", "sourceType": "carrier_pigeon"}`},
		{"malformed body", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, ingestMux(&stubIngester{}, nil), "/api/ingest/file", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleFilePipelineError(t *testing.T) {
	pipeline := &stubIngester{err: errors.New("embedding failed")}

	rec := postJSON(t, ingestMux(pipeline, nil), "/api/ingest/file", `{"text": "x", "title": "t"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Remote Note</title><script>x()</script></head>`+
			`<body><nav>menu</nav><p>remote   content</p></body></html>`)
	}))
	defer page.Close()

	pipeline := &stubIngester{docID: uuid.New()}
	rec := postJSON(t, ingestMux(pipeline, page.Client()), "/api/ingest/url",
		fmt.Sprintf(`{"url": %q}`, page.URL))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "URL ingested successfully", resp.Message)

	assert.Equal(t, knowledge.SourceWeb, pipeline.got.Type)
	assert.Equal(t, "Remote Note", pipeline.got.Title)
	assert.Equal(t, page.URL, pipeline.got.Locator)
	assert.Equal(t, "remote content", pipeline.got.Text)
}

func TestHandleURLTitleFallsBackToURL(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>untitled page</p></body></html>`)
	}))
	defer page.Close()

	pipeline := &stubIngester{}
	rec := postJSON(t, ingestMux(pipeline, page.Client()), "/api/ingest/url",
		fmt.Sprintf(`{"url": %q}`, page.URL))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, page.URL, pipeline.got.Title)
}

func TestHandleURLInlineHTML(t *testing.T) {
	pipeline := &stubIngester{}
	rec := postJSON(t, ingestMux(pipeline, nil), "/api/ingest/url",
		`{"url": "https://example.com/cached", "html": "<html><head><title>Cached</title></head><body><p>offline copy</p></body></html>"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cached", pipeline.got.Title)
	assert.Equal(t, "offline copy", pipeline.got.Text)
	assert.Equal(t, "https://example.com/cached", pipeline.got.Locator)
}

func TestHandleURLMissingURL(t *testing.T) {
	rec := postJSON(t, ingestMux(&stubIngester{}, nil), "/api/ingest/url", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleURLUpstreamFailure(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer page.Close()

	rec := postJSON(t, ingestMux(&stubIngester{}, page.Client()), "/api/ingest/url",
		fmt.Sprintf(`{"url": %q}`, page.URL))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
