// Package mock provides a test double for the reply.Provider interface.
//
// Use Provider in unit tests to feed controlled structured replies to the
// tell pipeline without a live generative backend and to inspect the
// prompts it was sent.
//
// Example:
//
//	p := &mock.Provider{
//	    AskReply: &reply.StructuredReply{Answer: "Well done."},
//	}
//	r, err := p.Ask(ctx, prompt)
package mock

import (
	"context"
	"sync"

	"github.com/tealbot/teal/pkg/provider/reply"
)

// Compile-time interface check.
var _ reply.Provider = (*Provider)(nil)

// AskCall records a single invocation of Ask.
type AskCall struct {
	// Prompt is the rendered prompt passed to Ask.
	Prompt string
}

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	// Prompt is the prompt passed to Generate.
	Prompt string
}

// Provider is a mock implementation of reply.Provider.
// Zero values cause methods to return zero values and nil errors; set the
// Err fields to inject failures.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// AskReply is returned by Ask when AskErr is nil.
	AskReply *reply.StructuredReply

	// AskErr, if non-nil, is returned as the error from Ask.
	AskErr error

	// GenerateText is returned by Generate when GenerateErr is nil.
	GenerateText string

	// GenerateErr, if non-nil, is returned as the error from Generate.
	GenerateErr error

	// --- Call records (read after test) ---

	// AskCalls records every invocation of Ask in order.
	AskCalls []AskCall

	// GenerateCalls records every invocation of Generate in order.
	GenerateCalls []GenerateCall
}

// Ask implements reply.Provider.
func (p *Provider) Ask(_ context.Context, prompt string) (*reply.StructuredReply, error) {
	p.mu.Lock()
	p.AskCalls = append(p.AskCalls, AskCall{Prompt: prompt})
	p.mu.Unlock()
	if p.AskErr != nil {
		return nil, p.AskErr
	}
	return p.AskReply, nil
}

// Generate implements reply.Provider.
func (p *Provider) Generate(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.GenerateCalls = append(p.GenerateCalls, GenerateCall{Prompt: prompt})
	p.mu.Unlock()
	if p.GenerateErr != nil {
		return "", p.GenerateErr
	}
	return p.GenerateText, nil
}
