// Package arch classifies project files into structural roles.
package arch

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
)

// bucketListLimit bounds the per-bucket file samples. Counts stay exact.
const bucketListLimit = 20

var (
	entryBasenames = core.NameSet(
		"main.py", "app.py", "index.js", "server.js", "app.js", "main.go",
	)
	configBasenames = core.NameSet(
		"config.py", "settings.py", "config.json", ".env",
		"docker-compose.yml", "config.yaml", "config.yml",
	)
	databaseExts = core.ExtSet(".db", ".sqlite", ".sql")
	staticExts   = core.ExtSet(".css", ".js", ".html", ".png", ".jpg", ".svg")
)

// Analyzer produces a structural overview of the tree. Every file lands in
// exactly one bucket; the rule order below is the precedence.
type Analyzer struct {
	*core.BaseAnalyzer
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolArchitecture,
			"Classify files into entry points, API surfaces, storage, configuration, tests and static assets.",
			logger,
		),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.ArchitectureReport{}

	add := func(b *schemas.Bucket, rel string) {
		b.Count++
		if len(b.Files) < bucketListLimit {
			b.Files = append(b.Files, rel)
		}
	}

	// Hidden files stay visible here so that .env lands in the config
	// bucket; hidden directories are still pruned.
	err := core.WalkAllFiles(ctx, session.Root, func(rel string, _ fs.DirEntry) error {
		report.TotalFiles++

		// All name rules look at the basename only: a file under an api/
		// or tests/ directory is not classified by its directory name.
		base := path.Base(rel)
		lowerBase := strings.ToLower(base)
		ext := strings.ToLower(path.Ext(rel))

		switch {
		case entryBasenames[base]:
			add(&report.EntryPoints, rel)
		case strings.Contains(lowerBase, "api") || strings.Contains(lowerBase, "route"):
			add(&report.APIFiles, rel)
		case databaseExts[ext]:
			add(&report.DatabaseFiles, rel)
		case configBasenames[base]:
			add(&report.ConfigFiles, rel)
		case strings.Contains(lowerBase, "test") || strings.HasPrefix(base, "test_"):
			add(&report.TestFiles, rel)
		case staticExts[ext]:
			add(&report.StaticAssets, rel)
		default:
			report.Uncategorized++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(session.Root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			report.TopLevelDirs = append(report.TopLevelDirs, e.Name())
		}
	}

	a.Logger.Info("Architecture summary finished",
		zap.Int("total_files", report.TotalFiles),
		zap.Int("entry_points", report.EntryPoints.Count))
	return report, nil
}
