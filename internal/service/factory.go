package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wajiha787/repolens/internal/analysis/arch"
	"github.com/wajiha787/repolens/internal/analysis/deps"
	"github.com/wajiha787/repolens/internal/analysis/history"
	"github.com/wajiha787/repolens/internal/analysis/metrics"
	"github.com/wajiha787/repolens/internal/analysis/security"
	"github.com/wajiha787/repolens/internal/analysis/tasks"
	"github.com/wajiha787/repolens/internal/cache"
	"github.com/wajiha787/repolens/internal/config"
	"github.com/wajiha787/repolens/internal/engine"
	"github.com/wajiha787/repolens/internal/explorer"
	"github.com/wajiha787/repolens/internal/llmclient"
	"github.com/wajiha787/repolens/internal/patterns"
	"github.com/wajiha787/repolens/internal/registry"
	"github.com/wajiha787/repolens/internal/router"
	"github.com/wajiha787/repolens/internal/search"
	"github.com/wajiha787/repolens/internal/synthesis"
	"github.com/wajiha787/repolens/internal/workspace"
)

// Build constructs the full component set from configuration. The returned
// components must be shut down by the caller.
func Build(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	lib := patterns.Default()
	if cfg.Analysis.PatternFile != "" {
		var err error
		lib, err = patterns.LoadFile(cfg.Analysis.PatternFile)
		if err != nil {
			return nil, fmt.Errorf("loading pattern overrides: %w", err)
		}
	}

	reg := registry.New(logger)
	maxSize := cfg.Analysis.MaxFileSize
	reg.Register(deps.New(lib, maxSize, logger))
	reg.Register(metrics.New(lib, maxSize, logger))
	reg.Register(security.New(lib, maxSize, logger))
	reg.Register(history.New(logger))
	reg.Register(tasks.New(lib, maxSize, logger))
	reg.Register(arch.New(logger))

	client, err := llmclient.NewClient(cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building LLM client: %w", err)
	}

	var reportCache *cache.ReportCache
	if cfg.Cache.Enabled {
		reportCache, err = cache.New(cfg.Cache.Size, logger)
		if err != nil {
			return nil, err
		}
	}

	synth := synthesis.New(client, lib, cfg.AI.ModelFor(cfg.AI.Provider).APITimeout, logger)
	eng := engine.New(reg, router.New(logger), synth, reportCache, engine.Options{
		ToolTimeout: cfg.Analysis.ToolTimeout,
		Concurrency: cfg.Analysis.Concurrency,
	}, logger)

	return &Components{
		Config:   cfg,
		Patterns: lib,
		Registry: reg,
		Engine:   eng,
		Synth:    synth,
		Loader:   workspace.NewLoader(cfg.Workspace, logger),
		Explorer: explorer.New(logger),
		Searcher: search.New(maxSize, logger),
		Cache:    reportCache,
		Client:   client,
		logger:   logger,
	}, nil
}
