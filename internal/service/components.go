// Package service assembles the engine and its collaborators from
// configuration. Centralizing construction keeps the commands thin and makes
// the whole stack buildable inside tests.
package service

import (
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/cache"
	"github.com/wajiha787/repolens/internal/config"
	"github.com/wajiha787/repolens/internal/engine"
	"github.com/wajiha787/repolens/internal/explorer"
	"github.com/wajiha787/repolens/internal/observability"
	"github.com/wajiha787/repolens/internal/patterns"
	"github.com/wajiha787/repolens/internal/registry"
	"github.com/wajiha787/repolens/internal/search"
	"github.com/wajiha787/repolens/internal/synthesis"
	"github.com/wajiha787/repolens/internal/workspace"
)

// Components holds every initialized collaborator a command needs.
type Components struct {
	Config   *config.Config
	Patterns *patterns.Library
	Registry *registry.Registry
	Engine   *engine.Engine
	Synth    *synthesis.Synthesizer
	Loader   *workspace.Loader
	Explorer *explorer.Explorer
	Searcher *search.Searcher
	Cache    *cache.ReportCache // Nil when caching is disabled.
	Client   schemas.LLMClient  // Nil when no AI provider is configured.

	watcher *cache.Watcher
	logger  *zap.Logger
}

// WatchSession starts cache invalidation for the session when both the cache
// and watching are enabled. Any previous watch is stopped first; one project
// is watched at a time.
func (c *Components) WatchSession(session *core.Session) error {
	if c.Cache == nil || !c.Config.Cache.Watch {
		return nil
	}
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}

	w, err := cache.Watch(c.Cache, session, c.logger)
	if err != nil {
		return err
	}
	c.watcher = w
	return nil
}

// Shutdown releases held resources. Safe to call once construction
// succeeded, in any state.
func (c *Components) Shutdown() {
	logger := observability.GetLogger()

	if c.watcher != nil {
		if err := c.watcher.Close(); err != nil {
			logger.Warn("Closing project watcher failed", zap.Error(err))
		}
		c.watcher = nil
	}
	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			logger.Warn("Closing LLM client failed", zap.Error(err))
		}
	}
	logger.Debug("Components shut down.")
}
