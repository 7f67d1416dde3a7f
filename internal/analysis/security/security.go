// Package security scans project files for risky code patterns.
package security

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

// sourceExtensions bounds the scan to code files. The pattern table assumes
// source syntax; prose and data files trip the credential patterns on
// documentation examples.
var sourceExtensions = core.ExtSet(".py", ".js", ".ts", ".jsx", ".tsx")

const (
	// maxReportedIssues bounds the issue list. The severity breakdown and
	// the total keep counting past the cap.
	maxReportedIssues = 20
	maxExcerptLen     = 120
)

// Analyzer applies the security pattern table to every textual file.
type Analyzer struct {
	*core.BaseAnalyzer
	lib         *patterns.Library
	maxFileSize int64
}

func New(lib *patterns.Library, maxFileSize int64, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolSecurity,
			"Scan source files for risky patterns: hardcoded credentials, injection-prone calls, weak randomness and debug switches.",
			logger,
		),
		lib:         lib,
		maxFileSize: maxFileSize,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.SecurityReport{
		SeverityBreakdown: make(map[schemas.Severity]int),
	}

	skipped, err := core.ScanFiles(ctx, session.Root, core.WalkOptions{
		Extensions:  sourceExtensions,
		MaxFileSize: a.maxFileSize,
	}, func(rel string, content []byte) error {
		report.FilesScanned++
		text := string(content)
		for _, p := range a.lib.Security {
			for _, loc := range p.Regexp().FindAllStringIndex(text, -1) {
				report.TotalMatches++
				report.SeverityBreakdown[p.Severity]++
				if len(report.Issues) >= maxReportedIssues {
					continue
				}
				report.Issues = append(report.Issues, schemas.SecurityIssue{
					File:     rel,
					Line:     lineAt(text, loc[0]),
					Pattern:  p.Name,
					Severity: p.Severity,
					Excerpt:  excerpt(text[loc[0]:loc[1]]),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Skipped = skipped

	a.Logger.Info("Security scan finished",
		zap.Int("files_scanned", report.FilesScanned),
		zap.Int("total_matches", report.TotalMatches),
		zap.Int("reported", len(report.Issues)))
	return report, nil
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// excerpt reduces a match to one bounded display line.
func excerpt(match string) string {
	s := strings.TrimSpace(match)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) > maxExcerptLen {
		s = strings.ToValidUTF8(s[:maxExcerptLen], "") + "..."
	}
	return s
}
