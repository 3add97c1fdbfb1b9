// Package tell implements the tell pipeline: resolve the user's context,
// render the tell prompt, invoke the generative provider, persist a
// [TellRecord], and return the answer.
package tell

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tealbot/teal/internal/observe"
	"github.com/tealbot/teal/internal/prompt"
	"github.com/tealbot/teal/internal/tellctx"
	"github.com/tealbot/teal/pkg/provider/reply"
	"github.com/tealbot/teal/pkg/store"
)

// Service orchestrates a single tell exchange. Each call runs as an
// independent sequential chain; concurrent calls share only the store
// handle, which must be safe for concurrent use.
type Service struct {
	store        store.Store
	provider     reply.Provider
	prompts      *prompt.Engine
	assembler    *tellctx.Assembler
	metrics      *observe.Metrics
	providerName string
}

// Option is a functional option for [NewService].
type Option func(*Service)

// WithMetrics replaces the default metrics instance. Mainly used by tests
// with a noop meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithProviderName sets the provider label attached to generation metrics.
func WithProviderName(name string) Option {
	return func(s *Service) { s.providerName = name }
}

// NewService wires a tell pipeline from its collaborators. All of them are
// required except via options.
func NewService(st store.Store, p reply.Provider, prompts *prompt.Engine, asm *tellctx.Assembler, opts ...Option) *Service {
	s := &Service{
		store:        st,
		provider:     p,
		prompts:      prompts,
		assembler:    asm,
		metrics:      observe.DefaultMetrics(),
		providerName: "unknown",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tell processes one disclosure from username and returns the answer text.
//
// The pipeline is: resolve context (lookup failures absorbed by the
// assembler) → render the tell template → ask the provider → persist a
// [TellRecord] → return [reply.StructuredReply.Answer]. Rendering, provider,
// and persistence failures are all fatal; on a persistence failure the
// already-generated answer is discarded rather than returned, so a returned
// answer always implies a stored record.
func (s *Service) Tell(ctx context.Context, username, text string, explicit *tellctx.Context) (string, error) {
	ctx, span := observe.StartSpan(ctx, "tell.process")
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		s.metrics.TellDuration.Record(ctx, time.Since(start).Seconds())
		s.metrics.TellsProcessed.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}()

	resolved := s.assembler.Resolve(ctx, username, explicit)

	rendered, err := s.prompts.Render(prompt.TellTemplate, map[string]string{
		"username": username,
		"context":  resolved.String(),
		"tell":     text,
	})
	if err != nil {
		return "", fmt.Errorf("tell: render prompt: %w", err)
	}

	genStart := time.Now()
	rep, err := s.provider.Ask(ctx, rendered)
	s.metrics.GenerationDuration.Record(ctx, time.Since(genStart).Seconds(),
		metric.WithAttributes(attribute.String("provider", s.providerName)),
	)
	if err != nil {
		s.metrics.RecordProviderRequest(ctx, s.providerName, "error")
		return "", fmt.Errorf("tell: generate reply: %w", err)
	}
	s.metrics.RecordProviderRequest(ctx, s.providerName, "ok")

	rec := TellRecord{
		ID:        uuid.NewString(),
		Username:  username,
		Tell:      text,
		Answer:    rep.Answer,
		UserState: rep.UserState,
		Mood:      rep.Mood,
		Summary:   rep.Summary,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, TellsCollection, rec); err != nil {
		return "", fmt.Errorf("tell: persist record: %w", err)
	}

	status = "ok"
	return rep.Answer, nil
}
