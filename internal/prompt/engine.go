// Package prompt loads named prompt templates and renders them by
// substituting {name} placeholders with caller-supplied values.
//
// Templates ship embedded in the binary under templates/ as Markdown
// files; the template named "tell" maps to templates/tell.md. Rendering
// is purely textual: values are inserted literally with no escaping, no
// recursive substitution, and no whitespace trimming.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

//go:embed templates/*.md
var templatesFS embed.FS

var (
	// ErrTemplateNotFound indicates the named template is not part of the
	// loaded template set.
	ErrTemplateNotFound = errors.New("prompt: template not found")

	// ErrTemplateInvalid indicates the template's stored bytes are not
	// valid UTF-8 text.
	ErrTemplateInvalid = errors.New("prompt: template is not valid UTF-8")
)

// TellTemplate is the name of the tell prompt template.
const TellTemplate = "tell"

// Engine renders named templates from a template file set. The zero value
// is not usable; construct with [NewEngine] or [NewEngineFromFS].
//
// Loaded template text is cached after first use; the cache is purely an
// optimisation and never changes observable output. Safe for concurrent use.
type Engine struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]string
}

// NewEngine returns an Engine backed by the embedded template set.
func NewEngine() *Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The embedded tree always contains templates/; reaching this
		// means the binary itself is broken.
		panic(fmt.Sprintf("prompt: embedded templates missing: %v", err))
	}
	return NewEngineFromFS(sub)
}

// NewEngineFromFS returns an Engine reading templates from fsys, where the
// template named n lives at n + ".md". Used by tests to supply fixture
// templates.
func NewEngineFromFS(fsys fs.FS) *Engine {
	return &Engine{fsys: fsys, cache: make(map[string]string)}
}

// Render loads the named template and substitutes every occurrence of
// {key} for each key in replacements with its value.
//
// Placeholders with no matching key are left untouched; replacement keys
// with no matching placeholder are ignored. Substitution is applied in
// sorted key order so identical input always yields identical output.
func (e *Engine) Render(name string, replacements map[string]string) (string, error) {
	tmpl, err := e.load(name)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := tmpl
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{"+k+"}", replacements[k])
	}
	return out, nil
}

// load returns the template text for name, reading and validating it on
// first use.
func (e *Engine) load(name string) (string, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	raw, err := fs.ReadFile(e.fsys, name+".md")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %q", ErrTemplateInvalid, name)
	}

	tmpl = string(raw)
	e.mu.Lock()
	e.cache[name] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}
