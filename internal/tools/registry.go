package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/pkg/metrics"
)

// Registry holds the tools offered to the model and dispatches invocations
// by name. Definition order follows registration order so the model sees a
// stable tool list.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, tool := range tools {
		r.Register(tool)
	}
	return r
}

func (r *Registry) Register(tool Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

func (r *Registry) Definitions() []entity.ToolDefinition {
	definitions := make([]entity.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		definitions = append(definitions, r.tools[name].Definition())
	}
	return definitions
}

func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, []entity.Source, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", entity.ErrUnknownTool, name)
	}
	metrics.ToolExecutions.WithLabelValues(name).Inc()
	return tool.Execute(ctx, args)
}
