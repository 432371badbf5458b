package stats

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/coursewire/coursewire/internal/application"
	"github.com/coursewire/coursewire/internal/infrastructure/postgres"
)

// Collector keeps the aggregate snapshots current: a cron job appends a fresh
// snapshot on schedule, and the store's change feed refreshes the latest row
// whenever the users table changes.
type Collector struct {
	Svc      *application.StatsService
	Listener *postgres.Listener
	CronSpec string
	Logger   *logrus.Logger

	cron *cron.Cron
}

func NewCollector(svc *application.StatsService, listener *postgres.Listener, spec string, logger *logrus.Logger) *Collector {
	return &Collector{Svc: svc, Listener: listener, CronSpec: spec, Logger: logger}
}

// Start schedules the snapshot job and begins draining the change feed.
// Both run until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) error {
	c.cron = cron.New(cron.WithSeconds())
	if _, err := c.cron.AddFunc(c.CronSpec, func() { c.snapshot(ctx) }); err != nil {
		return err
	}
	c.cron.Start()

	if c.Listener != nil {
		go c.drain(ctx)
	}
	return nil
}

// Stop halts the cron scheduler and waits for a running job to finish.
func (c *Collector) Stop() {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
}

func (c *Collector) snapshot(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := c.Svc.Snapshot(ctx); err != nil {
		c.Logger.WithError(err).Error("stats snapshot failed")
	}
}

// drain coalesces change notifications so a burst of writes triggers a
// single recompute per second at most.
func (c *Collector) drain(ctx context.Context) {
	notify := make(chan struct{}, 1)
	go c.Listener.Run(ctx, func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})

	const minInterval = time.Second
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
		}
		if wait := minInterval - time.Since(last); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
		last = time.Now()
		if err := c.recompute(ctx); err != nil {
			c.Logger.WithError(err).Warn("stats recompute failed")
		}
	}
}

func (c *Collector) recompute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.Svc.Recompute(ctx)
}
