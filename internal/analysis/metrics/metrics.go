// Package metrics measures the size and shape of a codebase: line counts,
// per-extension totals, the largest files and a declaration-count complexity
// heuristic.
package metrics

import (
	"context"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

// textExtensions is the allow-list of file types the walk measures.
var textExtensions = core.ExtSet(
	".py", ".js", ".ts", ".jsx", ".tsx", ".html", ".css", ".md", ".txt", ".json",
)

// Label thresholds. A project strictly below the first bound gets the small
// label, below the second the medium one.
const (
	smallLineLimit  = 1000
	mediumLineLimit = 10000

	lowComplexityLimit    = 10
	mediumComplexityLimit = 50
)

const largestFileCount = 10

// Analyzer implements the code metrics tool.
type Analyzer struct {
	*core.BaseAnalyzer
	lib         *patterns.Library
	maxFileSize int64
}

// New creates the metrics analyzer.
func New(lib *patterns.Library, maxFileSize int64, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolMetrics,
			"Measures the codebase: total lines, per-extension counts, largest files and a complexity estimate.",
			logger,
		),
		lib:         lib,
		maxFileSize: maxFileSize,
	}
}

// Analyze walks every allow-listed text file and aggregates the counts.
func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.MetricsReport{
		ByExtension: make(map[string]schemas.ExtensionStat),
	}
	var files []schemas.FileStat

	skipped, err := core.ScanFiles(ctx, session.Root, core.WalkOptions{
		Extensions:  textExtensions,
		MaxFileSize: a.maxFileSize,
	}, func(rel string, content []byte) error {
		// A file's line count is the number of newline-separated segments,
		// so a trailing newline yields one final empty segment.
		lines := strings.Count(string(content), "\n") + 1
		ext := strings.ToLower(path.Ext(rel))

		report.TotalFiles++
		report.TotalLines += lines
		report.TotalBytes += int64(len(content))

		stat := report.ByExtension[ext]
		stat.Files++
		stat.Lines += lines
		report.ByExtension[ext] = stat

		if a.lib.ComplexityExts[ext] {
			report.ComplexityUnits += len(a.lib.Complexity.FindAllIndex(content, -1))
		}

		files = append(files, schemas.FileStat{Path: rel, Lines: lines, Bytes: int64(len(content))})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Largest files by line count; ties keep walk order.
	sort.SliceStable(files, func(i, j int) bool { return files[i].Lines > files[j].Lines })
	if len(files) > largestFileCount {
		files = files[:largestFileCount]
	}
	report.LargestFiles = files
	report.SizeLabel = sizeLabel(report.TotalLines)
	report.ComplexityLabel = complexityLabel(report.ComplexityUnits)
	report.Skipped = skipped

	a.Logger.Info("metrics scan complete",
		zap.Int("files", report.TotalFiles),
		zap.Int("lines", report.TotalLines),
		zap.String("size", report.SizeLabel),
	)
	return report, nil
}

func sizeLabel(lines int) string {
	switch {
	case lines < smallLineLimit:
		return "small"
	case lines < mediumLineLimit:
		return "medium"
	default:
		return "large"
	}
}

func complexityLabel(units int) string {
	switch {
	case units < lowComplexityLimit:
		return "low"
	case units < mediumComplexityLimit:
		return "medium"
	default:
		return "high"
	}
}
