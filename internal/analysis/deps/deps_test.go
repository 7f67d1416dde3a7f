package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/patterns"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	return New(patterns.Default(), 10*1024*1024, zaptest.NewLogger(t))
}

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

func analyze(t *testing.T, dir string) *schemas.DependencyReport {
	t.Helper()
	r, err := newTestAnalyzer(t).Analyze(context.Background(), newSession(t, dir))
	require.NoError(t, err)
	report, ok := r.(*schemas.DependencyReport)
	require.True(t, ok)
	return report
}

func manifestByPath(t *testing.T, report *schemas.DependencyReport, rel string) schemas.ManifestResult {
	t.Helper()
	for _, m := range report.Manifests {
		if m.Path == rel {
			return m
		}
	}
	t.Fatalf("manifest %s not in report", rel)
	return schemas.ManifestResult{}
}

func TestRequirementsParsing(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "requirements.txt", "flask==2.0.1\n\n# a comment\nrequests>=2.25\n  celery  \n")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "requirements.txt")

	assert.Equal(t, KindRequirements, m.Kind)
	assert.Equal(t, []string{"flask==2.0.1", "requests>=2.25", "celery"}, m.Entries)
	assert.Equal(t, 3, report.Total)
}

func TestPackageJSONParsing(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "package.json", `{
		"name": "demo",
		"dependencies": {"react": "^18.0.0", "axios": "1.4.0"},
		"devDependencies": {"vitest": "^1.0.0"}
	}`)

	report := analyze(t, dir)
	m := manifestByPath(t, report, "package.json")

	assert.Equal(t, KindNPM, m.Kind)
	// Regular dependencies sorted first, then dev dependencies.
	assert.Equal(t, []string{"axios@1.4.0", "react@^18.0.0", "vitest@^1.0.0"}, m.Entries)
}

func TestMalformedPackageJSON(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "package.json", "{ not json at all")
	write(t, dir, "requirements.txt", "flask\n")

	report := analyze(t, dir)

	bad := manifestByPath(t, report, "package.json")
	assert.Equal(t, "invalid JSON", bad.Error)
	assert.Empty(t, bad.Entries)

	// The other manifest is unaffected and the total ignores the broken one.
	good := manifestByPath(t, report, "requirements.txt")
	assert.Equal(t, []string{"flask"}, good.Entries)
	assert.Equal(t, 1, report.Total)
}

func TestParsePackageJSONSentinel(t *testing.T) {
	_, err := parsePackageJSON([]byte("nope"))
	assert.ErrorIs(t, err, ErrMalformedManifest)

	_, err = parsePackageJSON([]byte(`[1, 2, 3]`))
	assert.ErrorIs(t, err, ErrMalformedManifest, "a non-object document is malformed too")
}

func TestPipfileParsing(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "Pipfile", "[[source]]\nname = \"pypi\"\n\n[packages]\nflask = \"*\"\npytest = \">=7\"\nbroken line without equals\n")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "Pipfile")

	assert.Equal(t, KindPipfile, m.Kind)
	// Best effort: every leading identifier before '=' counts, section
	// content included; malformed lines are silently ignored.
	assert.Equal(t, []string{"name", "flask", "pytest"}, m.Entries)
}

func TestGoModParsing(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "go.mod", "module example.com/demo\n\ngo 1.22\n\nrequire (\n\tgithub.com/spf13/cobra v1.8.0\n\tgo.uber.org/zap v1.27.0\n)\n\nrequire github.com/inconshreveable/mousetrap v1.1.0 // indirect\n")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "go.mod")

	assert.Equal(t, KindGoMod, m.Kind)
	assert.Equal(t, []string{"github.com/spf13/cobra@v1.8.0", "go.uber.org/zap@v1.27.0"}, m.Entries,
		"indirect requirements are not listed")
}

func TestMalformedGoMod(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "go.mod", "this is not a module file ===")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "go.mod")
	assert.Equal(t, "invalid go.mod", m.Error)
}

func TestPyprojectParsing(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pyproject.toml", "[project]\nname = \"demo\"\ndependencies = [\"fastapi>=0.100\", \"uvicorn\"]\n")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "pyproject.toml")

	assert.Equal(t, KindPyproject, m.Kind)
	assert.Equal(t, []string{"fastapi>=0.100", "uvicorn"}, m.Entries)
}

func TestMalformedPyproject(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pyproject.toml", "[project\nbroken")

	report := analyze(t, dir)
	m := manifestByPath(t, report, "pyproject.toml")
	assert.Equal(t, "invalid TOML", m.Error)
}

func TestNestedManifestsAndTotal(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "requirements.txt", "flask\n")
	write(t, dir, "frontend/package.json", `{"dependencies": {"vue": "3.0.0"}}`)
	write(t, dir, "services/api/requirements.txt", "django\ncelery\n")

	report := analyze(t, dir)

	assert.Len(t, report.Manifests, 3)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, []string{"django", "celery"}, manifestByPath(t, report, "services/api/requirements.txt").Entries)
}

func TestOversizedManifestSkipped(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "requirements.txt", "flask\nrequests\n")

	a := New(patterns.Default(), 3, zaptest.NewLogger(t))
	r, err := a.Analyze(context.Background(), newSession(t, dir))
	require.NoError(t, err)
	report := r.(*schemas.DependencyReport)

	assert.Empty(t, report.Manifests)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "requirements.txt", report.Skipped[0].Path)
	assert.Equal(t, schemas.FileStatusSkipped, report.Skipped[0].Status)
}

func TestEmptyProject(t *testing.T) {
	report := analyze(t, t.TempDir())
	assert.Empty(t, report.Manifests)
	assert.Zero(t, report.Total)
}

func TestDescriptor(t *testing.T) {
	a := newTestAnalyzer(t)
	d := a.Descriptor()
	assert.Equal(t, schemas.ToolDependencies, d.Name)
	assert.NotEmpty(t, d.Description)
	require.Len(t, d.Parameters, 1)
	assert.Equal(t, "project_path", d.Parameters[0].Name)
	assert.False(t, d.RequiresCredential, "built-in tools run without credentials")
}

func TestContextCancellation(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "requirements.txt", "flask\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(t).Analyze(ctx, newSession(t, dir))
	assert.True(t, errors.Is(err, context.Canceled))
}
