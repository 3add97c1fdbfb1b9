// Package reply defines the Provider interface for generative reply
// backends and the parsing of their structured output.
//
// A reply provider wraps a hosted text-generation endpoint (Gemini's
// generateContent API or an OpenAI-compatible chat API) and exposes two
// operations: Ask, which sends a single rendered prompt and returns the
// parsed four-field [StructuredReply], and Generate, which returns the
// raw reply text. One request per call; no streaming, no multi-turn
// state, and no retries — retry policy, if any, belongs to the caller.
//
// Implementors must be safe for concurrent use.
package reply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteReply indicates the model returned JSON that is missing one
// or more of the four required fields. Test with errors.Is.
var ErrIncompleteReply = errors.New("reply: incomplete structured reply")

// StructuredReply is the parsed output of a generative call.
// All four fields are required; a reply missing any of them is a parse
// failure, never a partial success.
type StructuredReply struct {
	// Answer is the benevolent response shown to the user.
	Answer string `json:"answer"`

	// Summary is a third-person synopsis of the user's statement,
	// at most around a dozen words.
	Summary string `json:"summary"`

	// UserState is a short synopsis of the user's emotional state.
	UserState string `json:"user_state"`

	// Mood is a single-word or short mood tag.
	Mood string `json:"mood"`
}

// Provider is the abstraction over any generative reply backend.
type Provider interface {
	// Ask sends the rendered prompt to the model and returns the parsed
	// structured reply. Transport failures, non-success statuses, and
	// malformed payloads are all surfaced as errors; nothing is retried.
	Ask(ctx context.Context, prompt string) (*StructuredReply, error)

	// Generate sends the prompt and returns the raw reply text without
	// structured parsing. Used for free-form generations such as greetings.
	Generate(ctx context.Context, prompt string) (string, error)
}

// ParseStructured decodes text into a [StructuredReply]. A leading/trailing
// JSON code fence is stripped first via [StripJSONFence]. Invalid JSON,
// wrong field types, and absent fields all fail; fields that are present
// but empty are accepted as-is.
func ParseStructured(text string) (*StructuredReply, error) {
	// Pointer fields distinguish absent keys from empty values.
	var probe struct {
		Answer    *string `json:"answer"`
		Summary   *string `json:"summary"`
		UserState *string `json:"user_state"`
		Mood      *string `json:"mood"`
	}

	stripped := StripJSONFence(text)
	if err := json.Unmarshal([]byte(stripped), &probe); err != nil {
		return nil, fmt.Errorf("reply: decode structured reply: %w", err)
	}

	var missing []string
	if probe.Answer == nil {
		missing = append(missing, "answer")
	}
	if probe.Summary == nil {
		missing = append(missing, "summary")
	}
	if probe.UserState == nil {
		missing = append(missing, "user_state")
	}
	if probe.Mood == nil {
		missing = append(missing, "mood")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteReply, strings.Join(missing, ", "))
	}

	return &StructuredReply{
		Answer:    *probe.Answer,
		Summary:   *probe.Summary,
		UserState: *probe.UserState,
		Mood:      *probe.Mood,
	}, nil
}
