package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
)

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func initRepo(t *testing.T, dir string) *git.Worktree {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return wt
}

func commit(t *testing.T, wt *git.Worktree, dir, file, content, message, author string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	_, err := wt.Add(file)
	require.NoError(t, err)
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: author, Email: author + "@example.com", When: when},
	})
	require.NoError(t, err)
}

func analyze(t *testing.T, dir string) *schemas.HistoryReport {
	t.Helper()
	s, err := core.NewSession(dir, core.OriginLocal, "")
	require.NoError(t, err)
	r, err := New(zaptest.NewLogger(t)).Analyze(context.Background(), s)
	require.NoError(t, err)
	return r.(*schemas.HistoryReport)
}

func TestNotARepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("x"), 0o644))

	report := analyze(t, dir)

	assert.Equal(t, "not a git repository", report.Error)
	assert.Zero(t, report.TotalCommits)
	assert.Empty(t, report.RecentCommits)
}

func TestSummarizesCommits(t *testing.T) {
	dir := t.TempDir()
	wt := initRepo(t, dir)
	commit(t, wt, dir, "a.txt", "one", "initial import", "Ada", epoch)
	commit(t, wt, dir, "a.txt", "two", "tweak parser\n\nlonger body here", "Ada", epoch.Add(time.Hour))
	commit(t, wt, dir, "b.txt", "three", "add b", "Grace", epoch.AddDate(0, 1, 0))

	report := analyze(t, dir)

	assert.Empty(t, report.Error)
	assert.Equal(t, 3, report.TotalCommits)
	assert.Equal(t, map[string]int{"Ada": 2, "Grace": 1}, report.Authors)
	assert.Equal(t, map[string]int{"2024-03": 2, "2024-04": 1}, report.ActivityByMonth)

	require.Len(t, report.RecentCommits, 3)
	newest := report.RecentCommits[0]
	assert.Equal(t, "add b", newest.Message)
	assert.Equal(t, "Grace", newest.Author)
	assert.Len(t, newest.Hash, 8)
	assert.Equal(t, epoch.AddDate(0, 1, 0).Format(time.RFC3339), newest.Date)

	assert.Equal(t, "tweak parser", report.RecentCommits[1].Message, "message truncated to first line")
}

func TestFileChangeCounts(t *testing.T) {
	dir := t.TempDir()
	wt := initRepo(t, dir)
	commit(t, wt, dir, "a.txt", "v1", "a v1", "Ada", epoch)
	commit(t, wt, dir, "a.txt", "v2", "a v2", "Ada", epoch.Add(time.Hour))
	commit(t, wt, dir, "b.txt", "v1", "b v1", "Ada", epoch.Add(2*time.Hour))

	report := analyze(t, dir)

	assert.Equal(t, 2, report.FileChanges["a.txt"])
	assert.Equal(t, 1, report.FileChanges["b.txt"])
}

func TestWindowAndRecentListBounds(t *testing.T) {
	dir := t.TempDir()
	wt := initRepo(t, dir)
	for i := 0; i < 55; i++ {
		commit(t, wt, dir, "log.txt", fmt.Sprintf("entry %d", i),
			fmt.Sprintf("change %d", i), "Ada", epoch.Add(time.Duration(i)*time.Minute))
	}

	report := analyze(t, dir)

	assert.Equal(t, 50, report.TotalCommits, "figures cover the recent window only")
	require.Len(t, report.RecentCommits, 10)
	assert.Equal(t, "change 54", report.RecentCommits[0].Message)
	assert.Equal(t, "change 45", report.RecentCommits[9].Message)
	assert.Equal(t, 50, report.Authors["Ada"])
	assert.Equal(t, 50, report.FileChanges["log.txt"])
}
