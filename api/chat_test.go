package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/chat"
	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/log"
)

// stubAsker returns a canned response or error.
type stubAsker struct {
	resp chat.Response
	err  error
	got  chat.Request
}

func (s *stubAsker) Ask(_ context.Context, req chat.Request) (chat.Response, error) {
	s.got = req
	return s.resp, s.err
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func chatMux(asker Asker) *http.ServeMux {
	mux := http.NewServeMux()
	NewChatHandler(asker, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestHandleChat(t *testing.T) {
	docID := uuid.New()
	asker := &stubAsker{resp: chat.Response{
		Answer:  "Gophers live underground.",
		Sources: []chat.SourceRef{{DocumentID: docID, Score: 0.91}},
	}}

	rec := postJSON(t, chatMux(asker), "/api/chat",
		`{"message": "where do gophers live?", "previousHistory": [{"role": "user", "text": "hi"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Gophers live underground.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, docID, resp.Sources[0].DocumentID)

	assert.Equal(t, "where do gophers live?", asker.got.Message)
	require.Len(t, asker.got.History, 1)
	assert.Equal(t, gemini.RoleUser, asker.got.History[0].Role)
}

func TestHandleChatEmptyMessage(t *testing.T) {
	rec := postJSON(t, chatMux(&stubAsker{}), "/api/chat", `{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatMalformedBody(t *testing.T) {
	rec := postJSON(t, chatMux(&stubAsker{}), "/api/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatRateLimited(t *testing.T) {
	asker := &stubAsker{err: gemini.ErrRateLimited}

	rec := postJSON(t, chatMux(asker), "/api/chat", `{"message": "q"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var payload struct {
		Error    string `json:"error"`
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, rateLimitedError, payload.Error)
	assert.Equal(t, rateLimitedResponse, payload.Response)
}

func TestHandleChatWrappedRateLimit(t *testing.T) {
	asker := &stubAsker{err: errors.New("wrapped: " + gemini.ErrRateLimited.Error())}
	// A plain error that merely mentions rate limiting is a 500; only
	// the sentinel maps to 429.
	rec := postJSON(t, chatMux(asker), "/api/chat", `{"message": "q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleChatInternalError(t *testing.T) {
	asker := &stubAsker{err: errors.New("search exploded")}

	rec := postJSON(t, chatMux(asker), "/api/chat", `{"message": "q"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "search exploded")
}
