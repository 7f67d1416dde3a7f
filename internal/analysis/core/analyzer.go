package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
)

// Analyzer is the core interface every analysis tool implements. The set of
// implementations is closed: each one inspects the session's tree and returns
// its typed report. Analyzers never mutate the session and must be safe to
// run concurrently against the same project.
type Analyzer interface {
	Name() string
	Description() string
	Descriptor() schemas.ToolDescriptor
	Analyze(ctx context.Context, session *Session) (schemas.Report, error)
}

// BaseAnalyzer provides the common identity plumbing for analyzers. It is
// embedded by the concrete implementations to cut boilerplate.
type BaseAnalyzer struct {
	name        string
	description string
	Logger      *zap.Logger // Exposed for use by the embedding analyzer.
}

// NewBaseAnalyzer creates the embeddable base with a named sub-logger.
func NewBaseAnalyzer(name, description string, logger *zap.Logger) *BaseAnalyzer {
	return &BaseAnalyzer{
		name:        name,
		description: description,
		Logger:      logger.Named(name),
	}
}

// Name returns the analyzer's registry name.
func (b *BaseAnalyzer) Name() string { return b.name }

// Description returns the analyzer's human-readable description.
func (b *BaseAnalyzer) Description() string { return b.description }

// Descriptor returns the tool metadata handed to listings and AI
// function-call declarations. Every built-in tool takes the project path as
// its single parameter; the engine supplies it from the active session.
func (b *BaseAnalyzer) Descriptor() schemas.ToolDescriptor {
	return schemas.ToolDescriptor{
		Name:        b.name,
		Description: b.description,
		Parameters: []schemas.ToolParameter{
			{
				Name:        "project_path",
				Type:        "string",
				Description: "Root directory of the project to analyze.",
				Required:    true,
			},
		},
	}
}
