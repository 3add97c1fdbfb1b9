// Package gemini implements reply.Provider against the Gemini
// generateContent REST API.
//
// The client speaks the raw HTTP envelope directly rather than going
// through an SDK: the request carries contents/parts plus a fixed
// system instruction and generation config, and the response is the
// candidates/content/parts envelope. One POST per call, no retries.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tealbot/teal/pkg/provider/reply"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	defaultTemperature     = 0.5
	defaultMaxOutputTokens = 500

	// systemInstruction shapes every reply. Fixed at deployment, not
	// per-call input.
	systemInstruction = "Speak an assertive, yet encouraging and soft-spoken, as if you're a " +
		"therapist talking to a perfectly sane and healthy adult. Do not ask questions, " +
		"and be concise and decisive with your answers."

	// placeholderText is substituted when the envelope carries no
	// candidates or no text part. The call itself still succeeds.
	placeholderText = "Gemini is not in a mood today!"
)

// Compile-time interface check.
var _ reply.Provider = (*Client)(nil)

// Option is a functional option for [New].
type Option func(*Client)

// WithBaseURL overrides the default Gemini API base URL. Tests point this
// at an httptest server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel selects the Gemini model (e.g., "gemini-2.0-flash").
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient replaces the HTTP client used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithMaxOutputTokens overrides the default output token cap.
func WithMaxOutputTokens(n int) Option {
	return func(c *Client) { c.maxOutputTokens = n }
}

// Client implements reply.Provider backed by the Gemini REST API.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client
}

// New creates a Gemini client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: apiKey must not be empty")
	}
	c := &Client{
		apiKey:          apiKey,
		baseURL:         defaultBaseURL,
		model:           defaultModel,
		temperature:     defaultTemperature,
		maxOutputTokens: defaultMaxOutputTokens,
		httpClient:      &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- Wire types ----

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction content          `json:"system_instruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

// generateResponse is the outer response envelope. Only the first
// candidate's first text part is consumed.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Ask implements reply.Provider. It sends one generateContent request and
// parses the reply text as a structured four-field JSON object.
func (c *Client) Ask(ctx context.Context, prompt string) (*reply.StructuredReply, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return reply.ParseStructured(text)
}

// Generate implements reply.Provider. It returns the raw candidate text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt)
}

// generate performs the HTTP round trip and extracts the candidate text,
// falling back to placeholderText when the envelope is empty.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	body := generateRequest{
		Contents:          []content{{Parts: []part{{Text: prompt}}}},
		SystemInstruction: content{Parts: []part{{Text: systemInstruction}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini: generateContent returned %s: %s", resp.Status, snippet)
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("gemini: decode envelope: %w", err)
	}

	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return placeholderText, nil
	}
	return envelope.Candidates[0].Content.Parts[0].Text, nil
}
