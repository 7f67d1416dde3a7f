// Package router maps natural-language questions to analysis tools.
package router

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
)

// intentGroup binds one tool to the keywords that select it. Groups fire
// independently; the table order is the execution order of selected tools.
type intentGroup struct {
	tool     string
	keywords []string
}

var intents = []intentGroup{
	{schemas.ToolDependencies, []string{"dependencies", "packages", "requirements", "npm", "pip"}},
	{schemas.ToolMetrics, []string{"metrics", "lines", "complexity", "size", "statistics"}},
	{schemas.ToolSecurity, []string{"security", "vulnerability", "safe", "secure"}},
	{schemas.ToolHistory, []string{"git", "commit", "history", "changes", "author"}},
	{schemas.ToolTasks, []string{"todo", "fixme", "task", "hack", "note"}},
	{schemas.ToolArchitecture, []string{"architecture", "structure", "entry", "api", "endpoint"}},
}

// defaultTools answer questions that name no analysis area at all.
var defaultTools = []string{schemas.ToolMetrics, schemas.ToolDependencies}

// Router selects tools by keyword intent. Matching is a case-insensitive
// substring check against the whole question.
type Router struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Router {
	return &Router{logger: logger.Named("router")}
}

// Route returns the tools to run for a question, in execution order.
func (r *Router) Route(question string) []string {
	lower := strings.ToLower(question)

	var tools []string
	for _, group := range intents {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				tools = append(tools, group.tool)
				break
			}
		}
	}
	if len(tools) == 0 {
		tools = append(tools, defaultTools...)
	}

	r.logger.Debug("Routed question", zap.Strings("tools", tools))
	return tools
}
