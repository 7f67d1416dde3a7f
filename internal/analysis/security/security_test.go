package security

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

func newSession(t *testing.T, dir string) *core.Session {
	t.Helper()
	s, err := core.NewSession(dir, core.OriginLocal, "")
	require.NoError(t, err)
	return s
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func analyze(t *testing.T, dir string) *schemas.SecurityReport {
	t.Helper()
	a := New(patterns.Default(), 10*1024*1024, zaptest.NewLogger(t))
	r, err := a.Analyze(context.Background(), newSession(t, dir))
	require.NoError(t, err)
	return r.(*schemas.SecurityReport)
}

func TestDetectsKnownPatterns(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		pattern  string
		severity schemas.Severity
	}{
		{"password", `password = "hunter2"`, "hardcoded_passwords", schemas.SeverityHigh},
		{"api key", `API_KEY = "sk-abc123"`, "api_keys", schemas.SeverityHigh},
		{"sql format string", `cursor.execute("SELECT * FROM users WHERE id = %s" % uid)`, "sql_injection", schemas.SeverityMedium},
		{"eval", `result = eval(expr)`, "eval_usage", schemas.SeverityMedium},
		{"shell call", `os.system("rm -rf " + target)`, "shell_injection", schemas.SeverityMedium},
		{"weak random", `token = random.random()`, "weak_random", schemas.SeverityMedium},
		{"debug flag", `DEBUG = True`, "debug_mode", schemas.SeverityMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, "app.py", tc.content+"\n")

			report := analyze(t, dir)

			require.NotEmpty(t, report.Issues)
			found := false
			for _, issue := range report.Issues {
				if issue.Pattern == tc.pattern {
					found = true
					assert.Equal(t, tc.severity, issue.Severity)
					assert.Equal(t, "app.py", issue.File)
				}
			}
			assert.True(t, found, "expected pattern %s", tc.pattern)
		})
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "settings.py", `PASSWORD = "root"`+"\n")

	report := analyze(t, dir)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, "hardcoded_passwords", report.Issues[0].Pattern)
}

func TestLineNumbers(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "app.py", "import os\n\nvalue = eval(data)\n")

	report := analyze(t, dir)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, 3, report.Issues[0].Line)
}

func TestIssueListCappedBreakdownIsNot(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		b.WriteString(`password = "secret"` + "\n")
	}
	dir := t.TempDir()
	write(t, dir, "creds.py", b.String())

	report := analyze(t, dir)

	assert.Len(t, report.Issues, 20)
	assert.Equal(t, 25, report.TotalMatches)
	assert.Equal(t, 25, report.SeverityBreakdown[schemas.SeverityHigh])
}

func TestExcerptIsBounded(t *testing.T) {
	long := `password = "` + strings.Repeat("a", 300) + `"`
	dir := t.TempDir()
	write(t, dir, "app.py", long+"\n")

	report := analyze(t, dir)

	require.Len(t, report.Issues, 1)
	assert.LessOrEqual(t, len(report.Issues[0].Excerpt), maxExcerptLen+len("..."))
	assert.True(t, strings.HasSuffix(report.Issues[0].Excerpt, "..."))
}

func TestOnlySourceExtensionsScanned(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.go", `password := "secret"`+"\n")
	write(t, dir, "README.md", `Set password = "example" in your config.`+"\n")
	write(t, dir, "creds.json", `{"password": "x"}`+"\n")
	write(t, dir, "app.py", `password = "secret"`+"\n")

	report := analyze(t, dir)

	assert.Equal(t, 1, report.FilesScanned, "docs and data files are not scanned")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "app.py", report.Issues[0].File)
}

func TestBinaryFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "blob.py", "data\x00password = \"x\"")

	report := analyze(t, dir)

	assert.Empty(t, report.Issues)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, core.SkipReasonBinary, report.Skipped[0].Reason)
}

func TestCleanProject(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "app.py", "def main():\n    return 0\n")

	report := analyze(t, dir)

	assert.Empty(t, report.Issues)
	assert.Zero(t, report.TotalMatches)
	assert.Empty(t, report.SeverityBreakdown)
	assert.Equal(t, 1, report.FilesScanned)
}
