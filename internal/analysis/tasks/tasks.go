// Package tasks finds TODO-style markers in source comments.
package tasks

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

// sourceExtensions covers languages whose comment leaders the task patterns
// understand (#, // and /*).
var sourceExtensions = core.ExtSet(
	".py", ".js", ".ts", ".jsx", ".tsx",
	".java", ".cpp", ".c", ".h",
)

// Analyzer collects task comments across the tree. Every match is reported;
// the list is never capped.
type Analyzer struct {
	*core.BaseAnalyzer
	lib         *patterns.Library
	maxFileSize int64
}

func New(lib *patterns.Library, maxFileSize int64, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolTasks,
			"Collect TODO, FIXME, HACK and NOTE comments with their locations.",
			logger,
		),
		lib:         lib,
		maxFileSize: maxFileSize,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.TaskReport{
		ByCategory: make(map[string]int),
	}

	skipped, err := core.ScanFiles(ctx, session.Root, core.WalkOptions{
		Extensions:  sourceExtensions,
		MaxFileSize: a.maxFileSize,
	}, func(rel string, content []byte) error {
		for i, line := range strings.Split(string(content), "\n") {
			for _, p := range a.lib.Tasks {
				for _, m := range p.Regexp().FindAllStringSubmatch(line, -1) {
					report.Comments = append(report.Comments, schemas.TaskComment{
						Category: p.Category,
						File:     rel,
						Line:     i + 1,
						Text:     strings.TrimSpace(m[1]),
						RawLine:  strings.TrimSpace(line),
					})
					report.ByCategory[p.Category]++
					report.Total++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Skipped = skipped

	a.Logger.Info("Task comment scan finished",
		zap.Int("total", report.Total),
		zap.Int("categories", len(report.ByCategory)))
	return report, nil
}
