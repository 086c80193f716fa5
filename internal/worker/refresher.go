package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"chatdash.app/api/common/logger"
	"chatdash.app/api/internal/service"
)

// DashboardSweeper is the slice of the dashboard service the refresher drives.
type DashboardSweeper interface {
	Sweep(ctx context.Context, maxIdle time.Duration, refresh bool) (service.SweepReport, error)
}

type RefresherConfig struct {
	Interval time.Duration
	// MaxIdle evicts session dashboards not read for this long.
	MaxIdle time.Duration
	// Reload makes every tick reload live session dashboards with their own
	// token. Without it the loop only evicts.
	Reload bool
	Clock  clockwork.Clock
}

// Refresher periodically sweeps the session dashboards: idle and orphaned
// ones are dropped and, with Reload, the rest are reloaded so the next read
// of each session does not pay the fetch.
type Refresher struct {
	dashboards DashboardSweeper
	cfg        RefresherConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRefresher(dashboards DashboardSweeper, cfg RefresherConfig) *Refresher {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Refresher{
		dashboards: dashboards,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called.
func (r *Refresher) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "chatdash.worker.refresher",
	})

	defer close(r.stoppedCh)

	ticker := r.cfg.Clock.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "refresher started",
		"interval", r.cfg.Interval,
		"max_idle", r.cfg.MaxIdle,
		"reload", r.cfg.Reload)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "refresher stopping")
			return
		case <-ticker.Chan():
			r.sweepOnce(ctx)
		}
	}
}

// Stop signals the loop and waits for it to exit.
func (r *Refresher) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

func (r *Refresher) sweepOnce(ctx context.Context) {
	start := r.cfg.Clock.Now()
	report, err := r.dashboards.Sweep(ctx, r.cfg.MaxIdle, r.cfg.Reload)
	if err != nil {
		slog.ErrorContext(ctx, "dashboard sweep failed", "error", err, "failed", report.Failed)
	}
	slog.DebugContext(ctx, "dashboards swept",
		"evicted", report.Evicted,
		"dropped", report.Dropped,
		"refreshed", report.Refreshed,
		"duration_ms", r.cfg.Clock.Since(start).Milliseconds())
}
