package dispatch

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/everafterhq/everafter/internal/cache"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/logger"
)

// DefaultSchedule sweeps for due broadcasts every minute.
const DefaultSchedule = "@every 1m"

// sweepTimeout bounds one dispatcher run.
const sweepTimeout = 2 * time.Minute

// Dispatcher runs the periodic background sweep: delivering due scheduled
// broadcasts and expiring stale cache entries. It is the only background
// worker in the system.
type Dispatcher struct {
	broadcasts *services.BroadcastService
	store      cache.Store
	cron       *cron.Cron
	schedule   string
	log        *zap.Logger
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithSchedule overrides the cron schedule expression.
func WithSchedule(schedule string) Option {
	return func(d *Dispatcher) {
		if schedule != "" {
			d.schedule = schedule
		}
	}
}

// New constructs a Dispatcher. The cache store may be nil when cleanup is
// handled by the backend itself (Redis expires keys natively).
func New(broadcasts *services.BroadcastService, store cache.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		broadcasts: broadcasts,
		store:      store,
		cron:       cron.New(),
		schedule:   DefaultSchedule,
		log:        logger.WithModule("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start registers the sweep job and begins the cron loop.
func (d *Dispatcher) Start() error {
	_, err := d.cron.AddFunc(d.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if err := d.Sweep(ctx); err != nil {
			d.log.Error("dispatch sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	d.cron.Start()
	d.log.Info("dispatcher started", zap.String("schedule", d.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
	d.log.Info("dispatcher stopped")
}

// Sweep performs one dispatcher pass. Individual job failures are combined
// so one failing job never hides the other.
func (d *Dispatcher) Sweep(ctx context.Context) error {
	var errs error

	dispatched, err := d.broadcasts.DispatchDue(ctx)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if dispatched > 0 {
		d.log.Info("broadcasts dispatched", zap.Int("count", dispatched))
	}

	if cleaner, ok := d.store.(interface {
		CleanupExpired(context.Context) (int64, error)
	}); ok && d.store != nil {
		removed, err := cleaner.CleanupExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			d.log.Debug("expired cache entries removed", zap.Int64("count", removed))
		}
	}

	return errs
}
