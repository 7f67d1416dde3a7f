// Package history summarizes recent git activity for a project.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
)

const (
	// commitWindow bounds every figure in the report to the most recent
	// commits reachable from HEAD.
	commitWindow    = 50
	recentListLimit = 10
	shortHashLen    = 8
)

// Analyzer reads the on-disk repository. A project that is not under git
// produces an error-tagged report, not an analyzer failure.
type Analyzer struct {
	*core.BaseAnalyzer
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		BaseAnalyzer: core.NewBaseAnalyzer(
			schemas.ToolHistory,
			"Summarize recent commit activity from the project's git repository.",
			logger,
		),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, session *core.Session) (schemas.Report, error) {
	report := &schemas.HistoryReport{
		Authors:         make(map[string]int),
		ActivityByMonth: make(map[string]int),
		FileChanges:     make(map[string]int),
	}

	repo, err := git.PlainOpen(session.Root)
	if err != nil {
		a.Logger.Debug("Project is not a git repository",
			zap.String("root", session.Root), zap.Error(err))
		if errors.Is(err, git.ErrRepositoryNotExists) {
			report.Error = "not a git repository"
		} else {
			report.Error = "opening repository: " + err.Error()
		}
		return report, nil
	}

	iter, err := repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		report.Error = "reading commit log: " + err.Error()
		return report, nil
	}
	defer iter.Close()

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if report.TotalCommits >= commitWindow {
			return storer.ErrStop
		}
		report.TotalCommits++
		report.Authors[c.Author.Name]++
		report.ActivityByMonth[c.Author.When.Format("2006-01")]++

		if len(report.RecentCommits) < recentListLimit {
			report.RecentCommits = append(report.RecentCommits, schemas.CommitSummary{
				Hash:    c.Hash.String()[:shortHashLen],
				Message: firstLine(c.Message),
				Author:  c.Author.Name,
				Date:    c.Author.When.Format(time.RFC3339),
			})
		}

		// Merge commits are skipped for file stats, matching what a plain
		// `git log --name-only` would show.
		if c.NumParents() <= 1 {
			if stats, statErr := c.Stats(); statErr == nil {
				for _, fs := range stats {
					report.FileChanges[fs.Name]++
				}
			}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report.Error = "walking commit log: " + err.Error()
		return report, nil
	}

	a.Logger.Info("History analysis finished",
		zap.Int("commits", report.TotalCommits),
		zap.Int("authors", len(report.Authors)))
	return report, nil
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSpace(message)
}
