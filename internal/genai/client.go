// Package genai calls the hosted generative model that turns a
// natural-language request into a database schema description.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/strucbot/strucbot/internal/model"
)

const (
	// ClientTimeout is the total request timeout for a generation call.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// DefaultBaseURL is the Google Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// systemPrompt is the fixed instruction prepended to every request.
const systemPrompt = `You are an expert database architect. Your task is to generate a JSON object representing a database schema based on a user's request. The JSON object must have "table_name" (a lowercase, plural string) and "columns" (an array of objects). Each column object must have "name" (snake_case) and "data_type" (SQL type like VARCHAR(255), INTEGER, TEXT). Always include an 'id' column as 'SERIAL PRIMARY KEY'. Respond ONLY with the raw JSON object, no markdown or text.`

// ErrGenerationFailed covers every failure mode of a generation call:
// transport errors, non-2xx replies, empty candidates and unparseable
// JSON. Callers only ever see this one generic error.
var ErrGenerationFailed = errors.New("failed to generate schema from AI")

// Generator produces a schema description for a free-text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*model.GeneratedSchema, error)
}

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
	Model   string // defaults to DefaultModel
	Logger  *slog.Logger
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a Gemini client with conservative timeouts.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: newHTTPClient(),
		baseURL:    baseURL,
		model:      modelName,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

// newHTTPClient creates an HTTP client configured for generation calls.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Wire types for the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends the fixed instruction plus the user prompt to the
// model and parses the text reply as a schema object. The parsed shape
// is passed through without validation.
func (c *Client) Generate(ctx context.Context, prompt string) (*model.GeneratedSchema, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{{
				Text: fmt.Sprintf("%s\n\nUser request: \"%s\"", systemPrompt, prompt),
			}},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrGenerationFailed, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("generation call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrGenerationFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("generation call returned error status",
			"status_code", resp.StatusCode,
			"model", c.model,
		)
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty reply", ErrGenerationFailed)
	}

	return ParseReply(genResp.Candidates[0].Content.Parts[0].Text)
}
