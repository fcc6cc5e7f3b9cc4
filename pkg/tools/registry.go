package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/kirana/pkg/genai"
)

// Result is the structured payload returned to the backend for one tool
// call. An "error" key marks a contained failure; its absence marks
// success. Each tool defines its own success shape.
type Result map[string]any

// Handler executes one validated tool invocation. Handlers never return
// an error and never panic past the dispatcher: failures are expressed
// as a Result carrying an "error" key.
type Handler func(ctx context.Context, args map[string]any) Result

// Tool pairs a declaration with its handler so the declared schema set
// and the implemented set cannot drift apart.
type Tool struct {
	Definition genai.ToolDefinition
	Handler    Handler
}

// Registry is the closed catalog of tools exposed to the backend.
// Immutable after construction.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry validates the tool set at startup: names must be unique
// and non-empty, every declaration needs a handler and a parameter
// schema.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := strings.TrimSpace(t.Definition.Name)
		if name == "" {
			return nil, fmt.Errorf("tool declaration without a name")
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool declaration: %s", name)
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", name)
		}
		if t.Definition.Parameters == nil {
			return nil, fmt.Errorf("tool %s has no parameter schema", name)
		}
		r.order = append(r.order, name)
		r.tools[name] = t
	}
	return r, nil
}

// Declarations returns the tool declarations in registration order, as
// submitted to the backend on every request.
func (r *Registry) Declarations() []genai.ToolDefinition {
	out := make([]genai.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Definition)
	}
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Providers carries the external collaborators the default tool set
// depends on.
type Providers struct {
	Weather WeatherProvider
	Search  SummaryProvider
}

// DefaultRegistry wires the assistant's five tools against the given
// state and providers.
func DefaultRegistry(state *AssistantState, p Providers) (*Registry, error) {
	return NewRegistry(
		WeatherTool(p.Weather),
		CalendarTool(state),
		ReminderTool(state),
		SearchTool(p.Search),
		EmailTool(),
	)
}
