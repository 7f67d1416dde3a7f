package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/config"
)

func TestBuild_DefaultConfig(t *testing.T) {
	comps, err := Build(config.NewDefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer comps.Shutdown()

	assert.Nil(t, comps.Client, "no AI provider configured by default")
	assert.NotNil(t, comps.Cache, "cache is on by default")

	names := comps.Registry.Names()
	assert.Equal(t, []string{
		schemas.ToolDependencies,
		schemas.ToolMetrics,
		schemas.ToolSecurity,
		schemas.ToolHistory,
		schemas.ToolTasks,
		schemas.ToolArchitecture,
	}, names, "all six tools register in a stable order")
}

func TestBuild_CacheDisabled(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Cache.Enabled = false

	comps, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer comps.Shutdown()

	assert.Nil(t, comps.Cache)
}

func TestBuild_BadPatternFile(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("security:\n  - name: broken\n    severity: high\n    pattern: '('\n"), 0o644))

	cfg := config.NewDefaultConfig()
	cfg.Analysis.PatternFile = bad

	_, err := Build(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern")
}

func TestBuild_MisconfiguredProvider(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.AI.Provider = config.ProviderOpenAI // No API key in the environment of this test.
	cfg.AI.Models = map[string]config.LLMModelConfig{}

	_, err := Build(cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestComponents_EndToEndAsk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"),
		[]byte("import os\n\ndef run():\n    # TODO: wire config\n    pass\n"), 0o644))

	comps, err := Build(config.NewDefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer comps.Shutdown()

	session, err := comps.Loader.Load(context.Background(), root)
	require.NoError(t, err)

	env, err := comps.Engine.Ask(context.Background(), session, "how many lines of code?")
	require.NoError(t, err)
	assert.Equal(t, schemas.AnswerSourceFallback, env.Source)
	assert.Contains(t, env.Answer, "Code Metrics")
}

func TestWatchSession_DisabledByDefault(t *testing.T) {
	comps, err := Build(config.NewDefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer comps.Shutdown()

	session, err := core.NewSession(t.TempDir(), core.OriginLocal, "")
	require.NoError(t, err)

	require.NoError(t, comps.WatchSession(session))
	assert.Nil(t, comps.watcher, "watching is off unless cache.watch is set")
}

func TestWatchSession_StartsAndStops(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Cache.Watch = true

	comps, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	session, err := core.NewSession(t.TempDir(), core.OriginLocal, "")
	require.NoError(t, err)

	require.NoError(t, comps.WatchSession(session))
	assert.NotNil(t, comps.watcher)
	comps.Shutdown()
	assert.Nil(t, comps.watcher)
}
