// Package tellctx assembles the conversational context injected into
// every tell prompt.
//
// A [Context] carries the user's current mood, a running summary, and the
// histories of past summaries and past tells. It is built fresh per
// request — either supplied explicitly by the caller or synthesised by
// [Assembler.Resolve] from previously persisted tell records — rendered
// into the prompt, and discarded.
package tellctx

import "strings"

// Context is the prior-state summary fed into the prompt for continuity.
// None of the fields may be nil; empty histories are valid and render as
// empty joined segments. Not persisted directly.
type Context struct {
	// Mood is the user's current mood tag.
	Mood string

	// Summary is a synopsis of the user's current state of mind.
	Summary string

	// SummaryHistory holds past summaries in the order they were recorded.
	// The order is preserved as given, never re-sorted.
	SummaryHistory []string

	// TellHistory holds past tells in the order they were recorded.
	TellHistory []string
}

// String renders the context as the single human-readable sentence the
// tell prompt embeds. Histories are comma-joined in place.
func (c Context) String() string {
	var sb strings.Builder
	sb.WriteString("My current mood: ")
	sb.WriteString(c.Mood)
	sb.WriteString(". My current situation: ")
	sb.WriteString(c.Summary)
	sb.WriteString(". My past situations: ")
	sb.WriteString(strings.Join(c.SummaryHistory, ", "))
	sb.WriteString(". My past tells to you: ")
	sb.WriteString(strings.Join(c.TellHistory, ", "))
	sb.WriteString(".")
	return sb.String()
}

// normalized returns a copy of c with nil history slices replaced by empty
// ones, upholding the Context field invariants.
func (c Context) normalized() Context {
	if c.SummaryHistory == nil {
		c.SummaryHistory = []string{}
	}
	if c.TellHistory == nil {
		c.TellHistory = []string{}
	}
	return c
}
