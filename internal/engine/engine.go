// Package engine wires the router, the tool registry and the synthesizer
// into the question-answering pipeline.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wajiha787/repolens/api/schemas"
	"github.com/wajiha787/repolens/internal/analysis/core"
	"github.com/wajiha787/repolens/internal/cache"
	"github.com/wajiha787/repolens/internal/registry"
	"github.com/wajiha787/repolens/internal/router"
	"github.com/wajiha787/repolens/internal/synthesis"
)

// Options tunes pipeline execution.
type Options struct {
	// ToolTimeout bounds each tool run. Zero disables the bound.
	ToolTimeout time.Duration
	// Concurrency limits parallel tools in FullReport. Ask always runs
	// sequentially in router order.
	Concurrency int
}

// Engine answers questions about a loaded project.
type Engine struct {
	registry *registry.Registry
	router   *router.Router
	synth    *synthesis.Synthesizer
	cache    *cache.ReportCache // Optional; nil disables report caching.
	opts     Options
	logger   *zap.Logger
}

func New(reg *registry.Registry, rt *router.Router, synth *synthesis.Synthesizer, reportCache *cache.ReportCache, opts Options, logger *zap.Logger) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Engine{
		registry: reg,
		router:   rt,
		synth:    synth,
		cache:    reportCache,
		opts:     opts,
		logger:   logger.Named("engine"),
	}
}

// Ask routes the question, runs the selected tools in router order and
// synthesizes the answer. A failing tool degrades to a partial result set;
// the answer is always produced.
func (e *Engine) Ask(ctx context.Context, session *core.Session, question string) (*schemas.AnswerEnvelope, error) {
	start := time.Now()
	tools := e.router.Route(question)

	reports := make(map[string]schemas.Report, len(tools))
	for _, tool := range tools {
		report, err := e.runTool(ctx, session, tool)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("Tool failed, continuing with partial results",
				zap.String("tool", tool), zap.Error(err))
			continue
		}
		reports[tool] = report
	}

	answer, source := e.synth.Synthesize(ctx, question, reports)

	e.logger.Info("Question answered",
		zap.String("session", session.ID),
		zap.Strings("tools", tools),
		zap.String("source", string(source)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &schemas.AnswerEnvelope{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Question:  question,
		ToolsRun:  tools,
		Reports:   reports,
		Answer:    answer,
		Source:    source,
		Elapsed:   time.Since(start),
		CreatedAt: start,
	}, nil
}

// FullReport runs every registered tool against the session, bounded by the
// configured concurrency. Individual tool failures are logged and omitted
// from the result; only context cancellation aborts the batch.
func (e *Engine) FullReport(ctx context.Context, session *core.Session) (map[string]schemas.Report, error) {
	names := e.registry.Names()
	reports := make(map[string]schemas.Report, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for _, name := range names {
		g.Go(func() error {
			report, err := e.runTool(gctx, session, name)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Warn("Tool failed during full report",
					zap.String("tool", name), zap.Error(err))
				return nil
			}
			mu.Lock()
			reports[name] = report
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (e *Engine) runTool(ctx context.Context, session *core.Session, tool string) (schemas.Report, error) {
	if e.cache != nil {
		if report, ok := e.cache.Get(session.ID, tool); ok {
			e.logger.Debug("Report served from cache",
				zap.String("tool", tool), zap.String("session", session.ID))
			return report, nil
		}
	}

	if e.opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ToolTimeout)
		defer cancel()
	}

	report, err := e.registry.Execute(ctx, tool, session)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Put(session.ID, tool, report)
	}
	return report, nil
}
