package tellctx

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tealbot/teal/pkg/store"
)

// Assembler resolves the [Context] for a tell invocation, either passing
// through an explicit caller-supplied context or rebuilding one from the
// user's persisted tell history.
//
// History lookup is best-effort: any store failure is logged and absorbed,
// and the configured seed context is used instead. Resolve never fails.
type Assembler struct {
	store        store.Store
	collection   string
	seed         Context
	historyLimit int
}

// Option is a functional option for [NewAssembler].
type Option func(*Assembler)

// WithHistoryLimit caps how many of the user's most recent tell records
// contribute to the assembled context. Defaults to 10.
func WithHistoryLimit(n int) Option {
	return func(a *Assembler) { a.historyLimit = n }
}

// NewAssembler creates an Assembler reading prior tell records from the
// named collection of st. seed is returned whenever no usable history
// exists. st may be nil, in which case every default resolution yields
// the seed.
func NewAssembler(st store.Store, collection string, seed Context, opts ...Option) *Assembler {
	a := &Assembler{
		store:        st,
		collection:   collection,
		seed:         seed.normalized(),
		historyLimit: 10,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// historyRecord is the subset of a persisted tell document the assembler
// reads back. Unknown fields are ignored.
type historyRecord struct {
	Tell    string `json:"tell"`
	Summary string `json:"summary"`
	Mood    string `json:"mood"`
}

// Resolve returns the context for username's tell.
//
// When explicit is non-nil it is returned unchanged (modulo nil-slice
// normalisation) with no merging or validation against stored history.
// Otherwise the user's prior records are scanned; the most recent record
// supplies the current mood and summary, earlier records' summaries form
// the summary history, and all tells form the tell history — both in
// stored (oldest-first) order. Lookup failures and empty histories fall
// back to the seed context.
func (a *Assembler) Resolve(ctx context.Context, username string, explicit *Context) Context {
	if explicit != nil {
		return explicit.normalized()
	}
	if a.store == nil {
		return a.seed
	}

	docs, err := a.store.Scan(ctx, a.collection, "username", username)
	if err != nil {
		slog.Warn("tell history lookup failed, using seed context",
			"username", username,
			"err", err,
		)
		return a.seed
	}
	if len(docs) == 0 {
		return a.seed
	}

	records := make([]historyRecord, 0, len(docs))
	for _, doc := range docs {
		var rec historyRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			slog.Warn("skipping undecodable tell record", "username", username, "err", err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return a.seed
	}
	if len(records) > a.historyLimit {
		records = records[len(records)-a.historyLimit:]
	}

	latest := records[len(records)-1]
	out := Context{
		Mood:           latest.Mood,
		Summary:        latest.Summary,
		SummaryHistory: make([]string, 0, len(records)-1),
		TellHistory:    make([]string, 0, len(records)),
	}
	for _, rec := range records[:len(records)-1] {
		if rec.Summary != "" {
			out.SummaryHistory = append(out.SummaryHistory, rec.Summary)
		}
	}
	for _, rec := range records {
		if rec.Tell != "" {
			out.TellHistory = append(out.TellHistory, rec.Tell)
		}
	}

	if out.Mood == "" {
		out.Mood = a.seed.Mood
	}
	if out.Summary == "" {
		out.Summary = a.seed.Summary
	}
	return out
}
