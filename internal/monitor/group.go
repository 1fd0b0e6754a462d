package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of monitors a Group runs at once.
const DefaultConcurrency = 8

// Runner is anything with a blocking Run. *Monitor implements it.
type Runner interface {
	Run(ctx context.Context) error
}

// Group runs independent monitors concurrently. A failing monitor is
// logged and does not stop the others.
type Group struct {
	concurrency int
	logger      *slog.Logger
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithConcurrency sets how many monitors run at once. Monitors beyond the
// limit start when a running one stops.
func WithConcurrency(n int) GroupOption {
	return func(g *Group) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithGroupLogger sets the logger.
func WithGroupLogger(logger *slog.Logger) GroupOption {
	return func(g *Group) {
		g.logger = logger
	}
}

// NewGroup creates a Group.
func NewGroup(opts ...GroupOption) *Group {
	g := &Group{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Run starts every runner and blocks until all of them returned. It
// returns the errors of the runners that failed, indexed like runners;
// a nil entry means a clean stop.
func (g *Group) Run(ctx context.Context, runners []Runner) []error {
	g.logger.Info("starting monitors",
		"total", len(runners),
		"concurrency", g.concurrency,
	)
	startTime := time.Now()

	errs := make([]error, len(runners))

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)

	for i, r := range runners {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			if err := r.Run(ctx); err != nil {
				g.logger.Warn("monitor failed", "index", i, "error", err)
				errs[i] = err
			}
			return nil
		})
	}

	_ = eg.Wait() //nolint:errcheck // runners never return errors to the group

	g.logger.Info("monitors stopped",
		"total", len(runners),
		"elapsed", time.Since(startTime),
	)
	return errs
}
