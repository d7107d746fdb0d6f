// Package gemini wraps the Google Gemini API behind the two narrow
// capabilities the rest of secondbrain depends on: Embed(text) -> vector
// and Generate(prompt, history) -> text.
//
// Consumers (chat orchestrator, ingestion pipeline, temporal classifier)
// define their own single-method interfaces and accept a *Client, so
// tests substitute deterministic fakes without touching the network.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/koopa0/secondbrain/internal/log"
)

// Default model identifiers. The classifier model is intentionally the
// smaller/faster one: its output is three JSON fields and its failure
// mode is fail-open.
const (
	DefaultChatModel       = "gemini-2.0-flash"
	DefaultClassifierModel = "gemini-1.5-flash"
	DefaultEmbedModel      = "text-embedding-004"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one caller-supplied conversation turn. History is passed in
// and consumed per request; it is never persisted here.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Config holds Gemini client settings.
type Config struct {
	APIKey          string
	ChatModel       string
	ClassifierModel string
	EmbedModel      string
}

// Client is the concrete capability provider backed by the Gemini API.
type Client struct {
	genai  *genai.Client
	cfg    Config
	logger log.Logger
}

// NewClient creates a Gemini-backed capability client. Empty model
// names fall back to the package defaults.
func NewClient(ctx context.Context, cfg Config, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.ClassifierModel == "" {
		cfg.ClassifierModel = DefaultClassifierModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if logger == nil {
		logger = log.NewNop()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Client{genai: gc, cfg: cfg, logger: logger}, nil
}

// Embed converts text into its embedding vector. The vector length is
// fixed by the embedding model in use.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.genai.Models.EmbedContent(ctx, c.cfg.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", classify(err))
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("embedding text: %w: empty embedding response", ErrUnavailable)
	}
	return resp.Embeddings[0].Values, nil
}

// Generate produces a model response for the prompt, preceded by the
// given conversation history. History sanitization is the caller's
// responsibility; Generate sends turns verbatim.
func (c *Client) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.ChatModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", classify(err))
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generating response: %w: empty model response", ErrUnavailable)
	}
	return text, nil
}

// GenerateJSON runs a single prompt against the classifier model with a
// JSON response MIME type and returns the raw JSON text. Used by the
// temporal query classifier.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.ClassifierModel,
		genai.Text(prompt),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("generating JSON: %w", classify(err))
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generating JSON: %w: empty model response", ErrUnavailable)
	}
	return text, nil
}
