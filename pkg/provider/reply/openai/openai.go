// Package openai implements reply.Provider using the OpenAI chat
// completions API via the official Go SDK.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/tealbot/teal/pkg/provider/reply"
)

const (
	defaultModel = "gpt-4o-mini"

	defaultTemperature     = 0.5
	defaultMaxOutputTokens = 500

	// Same deployment-constant instruction as the Gemini backend, with an
	// explicit output-shape clause since the chat API has no response
	// schema parameter here.
	systemInstruction = "Speak an assertive, yet encouraging and soft-spoken, as if you're a " +
		"therapist talking to a perfectly sane and healthy adult. Do not ask questions, " +
		"and be concise and decisive with your answers. Respond with a single JSON object " +
		"holding the fields answer, summary, user_state, and mood."
)

// Compile-time interface check.
var _ reply.Provider = (*Client)(nil)

// config holds optional configuration for the client.
type config struct {
	baseURL         string
	model           string
	temperature     float64
	maxOutputTokens int
	timeout         time.Duration
}

// Option is a functional option for [New].
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel selects the chat model (e.g., "gpt-4o-mini").
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = t }
}

// WithMaxOutputTokens overrides the default completion token cap.
func WithMaxOutputTokens(n int) Option {
	return func(c *config) { c.maxOutputTokens = n }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Client implements reply.Provider against the OpenAI chat API.
type Client struct {
	client          oai.Client
	model           string
	temperature     float64
	maxOutputTokens int
}

// New constructs an OpenAI-backed reply client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}

	cfg := &config{
		model:           defaultModel,
		temperature:     defaultTemperature,
		maxOutputTokens: defaultMaxOutputTokens,
	}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Client{
		client:          oai.NewClient(reqOpts...),
		model:           cfg.model,
		temperature:     cfg.temperature,
		maxOutputTokens: cfg.maxOutputTokens,
	}, nil
}

// Ask implements reply.Provider.
func (c *Client) Ask(ctx context.Context, prompt string) (*reply.StructuredReply, error) {
	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return reply.ParseStructured(text)
}

// Generate implements reply.Provider.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemInstruction),
			oai.UserMessage(prompt),
		},
		Temperature:         param.NewOpt(c.temperature),
		MaxCompletionTokens: param.NewOpt(int64(c.maxOutputTokens)),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
