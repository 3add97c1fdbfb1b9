package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tealbot/teal/pkg/provider/reply"
	"github.com/tealbot/teal/pkg/provider/reply/gemini"
	"github.com/tealbot/teal/pkg/provider/reply/openai"
)

// ErrProviderNotRegistered is returned by [Registry.Create] when no factory
// has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps provider names to their constructor functions.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]func(ProviderEntry) (reply.Provider, error)
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]func(ProviderEntry) (reply.Provider, error)),
	}
}

// DefaultRegistry returns a [Registry] with the built-in providers
// ("gemini" and "openai") registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("gemini", newGemini)
	r.Register("openai", newOpenAI)
	return r
}

// Register registers a provider factory under name. Subsequent calls with
// the same name overwrite the previous registration.
func (r *Registry) Register(name string, factory func(ProviderEntry) (reply.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create instantiates a provider using the factory registered under
// entry.Name. Returns [ErrProviderNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) Create(entry ProviderEntry) (reply.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, entry.Name)
	}
	return factory(entry)
}

func newGemini(entry ProviderEntry) (reply.Provider, error) {
	var opts []gemini.Option
	if entry.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(entry.BaseURL))
	}
	if entry.Model != "" {
		opts = append(opts, gemini.WithModel(entry.Model))
	}
	if entry.Temperature != nil {
		opts = append(opts, gemini.WithTemperature(*entry.Temperature))
	}
	if entry.MaxOutputTokens > 0 {
		opts = append(opts, gemini.WithMaxOutputTokens(entry.MaxOutputTokens))
	}
	return gemini.New(ResolveAPIKey(entry), opts...)
}

func newOpenAI(entry ProviderEntry) (reply.Provider, error) {
	var opts []openai.Option
	if entry.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(entry.BaseURL))
	}
	if entry.Model != "" {
		opts = append(opts, openai.WithModel(entry.Model))
	}
	if entry.Temperature != nil {
		opts = append(opts, openai.WithTemperature(*entry.Temperature))
	}
	if entry.MaxOutputTokens > 0 {
		opts = append(opts, openai.WithMaxOutputTokens(entry.MaxOutputTokens))
	}
	return openai.New(ResolveAPIKey(entry), opts...)
}
