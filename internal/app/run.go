package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/declrt/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// Run executes the entry unit with require semantics in a fresh session and
// returns the unit's result.
func (a *App) Run(ctx context.Context, entry string) (cty.Value, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	s, err := a.NewSession(ctx)
	if err != nil {
		return cty.NilVal, err
	}
	defer s.Close(ctx)

	start := time.Now()
	result, err := s.Require(ctx, "", entry)
	if err != nil {
		return cty.NilVal, fmt.Errorf("run of '%s' failed: %w", entry, err)
	}
	a.logger.Debug("Run finished.", "entry", entry, "included", len(s.IncludedPaths()), "duration", time.Since(start))
	return result, nil
}

// RunConcurrent executes the entry unit in runs independent sessions, with
// at most the configured worker count in flight. Results are returned in run
// order. The first failure cancels the runs that have not started yet.
func (a *App) RunConcurrent(ctx context.Context, entry string, runs int) ([]cty.Value, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting concurrent runs.", "entry", entry, "runs", runs, "workers", a.cfg.WorkerCount)

	results := make([]cty.Value, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.WorkerCount)

	for i := 0; i < runs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := a.Run(gctx, entry)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.logger.Info("Concurrent runs finished.", "entry", entry, "runs", runs)
	return results, nil
}
