package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"NewsLens/internal/ports"
)

// CronScheduler drives recurring ingestion cycles from a cron
// expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the given cron expression and
// timezone.
func NewCronScheduler(spec string, location *time.Location) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location}
}

// Start registers the job and begins the cron loop. The job also fires
// once shortly after startup so a fresh deployment is not empty until
// the first tick.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.cron != nil {
		return nil
	}

	c.cron = cron.New(cron.WithLocation(c.location))
	if _, err := c.cron.AddFunc(c.spec, func() { job(time.Now().In(c.location)) }); err != nil {
		c.cron = nil
		return fmt.Errorf("register cron job %q: %w", c.spec, err)
	}

	c.cron.Start()
	time.AfterFunc(5*time.Second, func() {
		select {
		case <-ctx.Done():
		default:
			job(time.Now().In(c.location))
		}
	})

	return nil
}

// Stop halts the cron loop and waits for a running job to return.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	stopCtx := c.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	c.cron = nil
	return nil
}
