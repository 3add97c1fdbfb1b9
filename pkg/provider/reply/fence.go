package reply

import "strings"

const (
	fenceOpen  = "```json\n"
	fenceClose = "\n```"
)

// StripJSONFence removes a Markdown JSON code fence when, and only when,
// the opener is exactly at the start of s and the closer exactly at the
// end. It is a single-shot prefix/suffix match, not a general fence
// finder: fences anywhere else leave s untouched. This deliberately
// preserves the narrow contract the rest of the pipeline was built
// against; see the package tests for its edge cases.
func StripJSONFence(s string) string {
	if strings.HasPrefix(s, fenceOpen) && strings.HasSuffix(s, fenceClose) && len(s) >= len(fenceOpen)+len(fenceClose) {
		return strings.TrimSuffix(strings.TrimPrefix(s, fenceOpen), fenceClose)
	}
	return s
}
