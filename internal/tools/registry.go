// Package tools holds the gateway's operation registry and the PMS-backed
// tool implementations.
package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Content is one block of a tool result. The gateway passes payloads through
// without interpreting them; every current tool emits "text" blocks.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Text wraps a string as a single-block text result.
func Text(s string) []Content {
	return []Content{{Type: "text", Text: s}}
}

// Textf is Text with formatting.
func Textf(format string, args ...any) []Content {
	return Text(fmt.Sprintf(format, args...))
}

// Handler executes a tool. Business-rule rejections (bad dates, over
// capacity) are reported as text content; an error return is reserved for
// unexpected failures and surfaces as a JSON-RPC internal error.
type Handler func(ctx context.Context, args map[string]any) ([]Content, error)

// Tool describes one registered operation.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
	Handler     Handler            `json:"-"`
}

// Registry maps operation names to tools. It is populated once at startup
// and read-only afterwards, so lookups need no locking. List order is the
// registration order and is stable for the process lifetime.
type Registry struct {
	order  []string
	byName map[string]*Tool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Tool)}
}

func (r *Registry) Register(t *Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.byName[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Resolve(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call dispatches to a registered tool. An unknown name is an error the RPC
// layer maps to an internal-error response.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) ([]Content, error) {
	t, ok := r.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return t.Handler(ctx, args)
}
