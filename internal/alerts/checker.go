// Package alerts runs the in-process loop that notifies users whose price
// alert has been reached.
package alerts

import (
	"context"
	"log"
	"time"

	"github.com/01moynul/pricetracker-golang/internal/models"
	"github.com/juju/clock"
	"github.com/juju/errors"
)

// Source finds alerts to fire and records that they fired.
type Source interface {
	FindTriggerableAlerts(ctx context.Context) ([]models.TriggerableAlert, error)
	MarkNotified(ctx context.Context, id int64) (models.PriceAlert, error)
}

// Notifier delivers one alert to its owner.
type Notifier interface {
	Notify(ctx context.Context, alert models.TriggerableAlert) error
}

// Config holds the checker's dependencies.
type Config struct {
	Source   Source
	Notifier Notifier
	Clock    clock.Clock
	Interval time.Duration
}

// Validate returns an error if the config cannot be used to start a Checker.
func (cfg Config) Validate() error {
	if cfg.Source == nil {
		return errors.NotValidf("nil Source")
	}
	if cfg.Notifier == nil {
		return errors.NotValidf("nil Notifier")
	}
	if cfg.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if cfg.Interval <= 0 {
		return errors.NotValidf("non-positive Interval")
	}
	return nil
}

// Result counts what one pass did.
type Result struct {
	Found    int
	Notified int
	Failed   int
}

// Checker periodically notifies and marks triggerable alerts.
type Checker struct {
	cfg Config
}

// NewChecker returns a Checker or a NotValid error.
func NewChecker(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Checker{cfg: cfg}, nil
}

// Run does a pass immediately and then one per interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	log.Printf("[alerts] Checker started (interval %v)", c.cfg.Interval)
	for {
		if res, err := c.RunOnce(ctx); err != nil {
			log.Printf("[alerts] Check failed: %v", err)
		} else if res.Found > 0 {
			log.Printf("[alerts] Check done: %d found, %d notified, %d failed", res.Found, res.Notified, res.Failed)
		}

		select {
		case <-ctx.Done():
			log.Println("[alerts] Checker stopped")
			return
		case <-c.cfg.Clock.After(c.cfg.Interval):
		}
	}
}

// RunOnce notifies every triggerable alert in creation order. A failed
// notification leaves the alert active for the next pass. An alert marked
// by someone else in the meantime is skipped.
func (c *Checker) RunOnce(ctx context.Context) (Result, error) {
	pending, err := c.cfg.Source.FindTriggerableAlerts(ctx)
	if err != nil {
		return Result{}, errors.Annotate(err, "finding triggerable alerts")
	}

	res := Result{Found: len(pending)}
	for _, alert := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if err := c.cfg.Notifier.Notify(ctx, alert); err != nil {
			res.Failed++
			log.Printf("[alerts] Notifying alert %d (%s) failed: %v", alert.ID, alert.Email, err)
			continue
		}

		if _, err := c.cfg.Source.MarkNotified(ctx, alert.ID); err != nil {
			if errors.Is(err, errors.NotFound) {
				log.Printf("[alerts] Alert %d was already marked notified", alert.ID)
				continue
			}
			res.Failed++
			log.Printf("[alerts] Marking alert %d notified failed: %v", alert.ID, err)
			continue
		}
		res.Notified++
	}
	return res, nil
}
