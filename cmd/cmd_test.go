package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wajiha787/repolens/internal/config"
)

// withTestConfig points the package config at defaults for the duration of a
// test, since these tests execute subcommands without the root pre-run.
func withTestConfig(t *testing.T) {
	t.Helper()
	prev := appConfig
	appConfig = config.NewDefaultConfig()
	t.Cleanup(func() { appConfig = prev })
}

func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"),
		[]byte("import os\n\ndef run():\n    password = \"hunter2\"\n    # TODO: load from env\n    return os.environ\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"),
		[]byte("flask==2.0\nrequests\n"), 0o644))
	return root
}

func TestSplitTargetArgs(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name         string
		args         []string
		wantTarget   string
		wantQuestion string
	}{
		{"no args", nil, ".", ""},
		{"question only", []string{"what", "are", "the", "deps?"}, ".", "what are the deps?"},
		{"dir then question", []string{dir, "how", "big?"}, dir, "how big?"},
		{"url only", []string{"https://github.com/spf13/cobra"}, "https://github.com/spf13/cobra", ""},
		{"url then question", []string{"https://github.com/spf13/cobra", "security?"}, "https://github.com/spf13/cobra", "security?"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target, question := splitTargetArgs(tc.args)
			assert.Equal(t, tc.wantTarget, target)
			assert.Equal(t, tc.wantQuestion, question)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "repolens "+Version)
}

func TestToolsCmd_ListsAllSix(t *testing.T) {
	withTestConfig(t)

	var out bytes.Buffer
	cmd := newToolsCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	for _, name := range []string{
		"analyze_dependencies", "analyze_code_metrics", "find_security_issues",
		"analyze_git_history", "find_todos_and_fixmes", "generate_architecture_summary",
	} {
		assert.Contains(t, out.String(), name)
	}
}

func TestProvidersCmd_NoActiveProvider(t *testing.T) {
	withTestConfig(t)

	var out bytes.Buffer
	cmd := newProvidersCmd()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "gemini")
	assert.Contains(t, out.String(), "ollama")
	assert.Contains(t, out.String(), "deterministic templates")
}

func TestAskCmd_OneShot(t *testing.T) {
	withTestConfig(t)
	root := fixtureProject(t)

	var out bytes.Buffer
	cmd := newAskCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{root, "how", "many", "lines", "of", "code?"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Code Metrics")
}

func TestAskCmd_Interactive(t *testing.T) {
	withTestConfig(t)
	root := fixtureProject(t)

	var out bytes.Buffer
	cmd := newAskCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("any security problems?\ntree\nsearch password\nexit\n"))
	cmd.SetArgs([]string{root})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "repolens>")
	assert.Contains(t, out.String(), "Security Analysis")
	assert.Contains(t, out.String(), "└── requirements.txt")
	assert.Contains(t, out.String(), "main.py:4:")
}

func TestReportCmd_WritesJSONFile(t *testing.T) {
	withTestConfig(t)
	root := fixtureProject(t)
	outFile := filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	cmd := newReportCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{root, "-o", outFile})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Project report:")
	assert.Contains(t, out.String(), "Dependency Analysis")

	payload, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "total_dependencies")
}

func TestReportCmd_MissingTarget(t *testing.T) {
	withTestConfig(t)

	cmd := newReportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, cmd.Execute())
}
