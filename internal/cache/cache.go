// Package cache keeps recent tool reports so repeated questions against an
// unchanged project do not rescan the tree. An optional filesystem watcher
// drops a session's entries when anything under its root changes.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/wajiha787/repolens/api/schemas"
)

// ReportCache is an LRU over (session, tool) keyed reports. Safe for
// concurrent use; the underlying LRU carries its own lock.
type ReportCache struct {
	lru    *lru.Cache[string, schemas.Report]
	logger *zap.Logger
}

// New builds a cache holding at most size reports.
func New(size int, logger *zap.Logger) (*ReportCache, error) {
	inner, err := lru.New[string, schemas.Report](size)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}
	return &ReportCache{
		lru:    inner,
		logger: logger.Named("cache"),
	}, nil
}

func key(sessionID, tool string) string { return sessionID + "/" + tool }

// Get returns the cached report for a session and tool, if present.
func (c *ReportCache) Get(sessionID, tool string) (schemas.Report, bool) {
	return c.lru.Get(key(sessionID, tool))
}

// Put stores one report.
func (c *ReportCache) Put(sessionID, tool string, report schemas.Report) {
	c.lru.Add(key(sessionID, tool), report)
}

// InvalidateSession drops every report cached for the session.
func (c *ReportCache) InvalidateSession(sessionID string) {
	prefix := sessionID + "/"
	var dropped int
	for _, k := range c.lru.Keys() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			c.lru.Remove(k)
			dropped++
		}
	}
	if dropped > 0 {
		c.logger.Debug("Invalidated cached reports",
			zap.String("session", sessionID), zap.Int("reports", dropped))
	}
}

// Len returns the number of cached reports.
func (c *ReportCache) Len() int { return c.lru.Len() }
