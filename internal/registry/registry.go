// Package registry tracks the registered analysis tools and dispatches
// execution requests to them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
)

// ErrUnknownTool is returned by Execute when no tool carries the requested
// name. Callers distinguish it with errors.Is.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds the closed set of analysis tools. Registration happens at
// startup; Execute may be called from concurrent goroutines.
type Registry struct {
	logger *zap.Logger

	mu    sync.RWMutex
	tools map[string]core.Analyzer
	order []string
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger.Named("registry"),
		tools:  make(map[string]core.Analyzer),
	}
}

// Register adds a tool under its own name. Registering a name twice replaces
// the earlier tool but keeps its position in the listing order.
func (r *Registry) Register(tool core.Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	r.logger.Debug("Registered analysis tool", zap.String("tool", name))
}

// List returns the tool descriptors in registration order.
func (r *Registry) List() []schemas.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schemas.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor())
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Execute runs one tool against the session.
func (r *Registry) Execute(ctx context.Context, name string, session *core.Session) (schemas.Report, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	r.logger.Debug("Executing analysis tool",
		zap.String("tool", name), zap.String("session", session.ID))
	return tool.Analyze(ctx, session)
}
