package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tealbot/teal/pkg/provider/reply/openai"
)

// newMockServer replies to POST /chat/completions with a single choice
// carrying content.
func newMockServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		})
	}))
}

func TestNew_EmptyAPIKey_ReturnsError(t *testing.T) {
	if _, err := openai.New(""); err == nil {
		t.Fatal("expected error for empty apiKey, got nil")
	}
}

func TestGenerate_ReturnsContent(t *testing.T) {
	srv := newMockServer(t, "A warm welcome to you.")
	defer srv.Close()

	c, err := openai.New("test-key", openai.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := c.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "A warm welcome to you." {
		t.Errorf("text = %q", text)
	}
}

func TestAsk_ParsesStructuredReply(t *testing.T) {
	srv := newMockServer(t, `{"answer":"Keep going.","summary":"User is persevering","user_state":"determined","mood":"hopeful"}`)
	defer srv.Close()

	c, _ := openai.New("test-key", openai.WithBaseURL(srv.URL))
	r, err := c.Ask(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if r.Answer != "Keep going." || r.Mood != "hopeful" {
		t.Errorf("unexpected reply: %+v", r)
	}
}

func TestAsk_NonJSONContent_ReturnsError(t *testing.T) {
	srv := newMockServer(t, "I will not produce JSON today.")
	defer srv.Close()

	c, _ := openai.New("test-key", openai.WithBaseURL(srv.URL))
	if _, err := c.Ask(context.Background(), "prompt"); err == nil {
		t.Fatal("expected parse error for prose content")
	}
}
