// Package reminder runs the periodic re-delivery job: every tick it
// walks the currently-active alerts, resolves each audience, skips
// snoozed users, and dispatches a fresh delivery to everyone else.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/good-yellow-bee/alerthub/internal/audience"
	"github.com/good-yellow-bee/alerthub/internal/metrics"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/notifier"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

// DefaultInterval is the global tick cadence. Per-alert
// reminder_frequency_hours is stored but does not influence scheduling.
const DefaultInterval = 2 * time.Hour

// Policy decides whether a user should be re-notified this tick. It is
// consulted after the snooze check and holds no cross-tick state.
type Policy interface {
	// ShouldRemind reports whether the (alert, user) pair gets a delivery
	// on this pass given the pair's acknowledgement state, which is nil
	// when the user has never interacted with the alert.
	ShouldRemind(alert *models.Alert, user *models.User, pref *models.Preference) bool
}

// AlwaysRemind re-delivers on every tick regardless of read state. This
// is the stock policy: reading an alert does not stop its reminders.
type AlwaysRemind struct{}

func (AlwaysRemind) ShouldRemind(*models.Alert, *models.User, *models.Preference) bool {
	return true
}

// SuppressRead skips users who have marked the alert read.
type SuppressRead struct{}

func (SuppressRead) ShouldRemind(_ *models.Alert, _ *models.User, pref *models.Preference) bool {
	return pref == nil || !pref.IsRead
}

// PassStats summarizes one reminder pass.
type PassStats struct {
	Alerts     int `json:"alerts"`
	Deliveries int `json:"deliveries"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// Engine drives the reminder job on a fixed interval. Each pass is
// computed entirely from current store state; nothing carries over
// between ticks.
type Engine struct {
	store      storage.Storage
	dispatcher *notifier.Dispatcher
	resolver   *audience.Resolver
	policy     Policy
	interval   time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a reminder engine. A nil policy defaults to
// AlwaysRemind; a non-positive interval defaults to DefaultInterval.
func NewEngine(store storage.Storage, dispatcher *notifier.Dispatcher, resolver *audience.Resolver, policy Policy, interval time.Duration) *Engine {
	if policy == nil {
		policy = AlwaysRemind{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		store:      store,
		dispatcher: dispatcher,
		resolver:   resolver,
		policy:     policy,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the periodic loop. The first pass runs one full
// interval after Start; use RunOnce for an immediate pass.
func (e *Engine) Start(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		log.Printf("Reminder engine started (interval %s)", e.interval)
		for {
			select {
			case <-ticker.C:
				stats, err := e.RunOnce(ctx)
				if err != nil {
					log.Printf("Reminder pass failed: %v", err)
					continue
				}
				log.Printf("Reminder pass complete: %d alerts, %d deliveries, %d skipped, %d errors",
					stats.Alerts, stats.Deliveries, stats.Skipped, stats.Errors)
			case <-e.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the loop and waits for an in-flight pass to finish.
func (e *Engine) Stop() {
	close(e.stopCh)
	e.wg.Wait()
	log.Printf("Reminder engine stopped")
}

// RunOnce executes a single synchronous pass. A failure on one alert or
// one user is counted and logged but never aborts the pass.
func (e *Engine) RunOnce(ctx context.Context) (*PassStats, error) {
	now := time.Now().UTC()
	alerts, err := e.store.Alerts().ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}

	stats := &PassStats{Alerts: len(alerts)}
	for _, alert := range alerts {
		if err := e.processAlert(ctx, alert, now, stats); err != nil {
			stats.Errors++
			metrics.DeliveryErrorsTotal.Inc()
			log.Printf("Reminder pass: alert %s: %v", alert.ID, err)
		}
	}

	metrics.ReminderPassesTotal.Inc()
	return stats, nil
}

func (e *Engine) processAlert(ctx context.Context, alert *models.Alert, now time.Time, stats *PassStats) error {
	users, err := e.resolver.Resolve(ctx, alert)
	if err != nil {
		return fmt.Errorf("resolve audience: %w", err)
	}

	for _, user := range users {
		pref, err := e.store.Preferences().Get(ctx, user.ID, alert.ID)
		if err != nil {
			stats.Errors++
			metrics.DeliveryErrorsTotal.Inc()
			log.Printf("Reminder pass: alert %s user %s: load state: %v", alert.ID, user.ID, err)
			continue
		}
		if pref != nil && pref.SnoozedAt(now) {
			stats.Skipped++
			metrics.SnoozeSkipsTotal.Inc()
			continue
		}
		if !e.policy.ShouldRemind(alert, user, pref) {
			stats.Skipped++
			continue
		}

		if err := e.dispatcher.Dispatch(ctx, user, alert); err != nil {
			stats.Errors++
			metrics.DeliveryErrorsTotal.Inc()
			log.Printf("Reminder pass: alert %s user %s: %v", alert.ID, user.ID, err)
			continue
		}
		stats.Deliveries++
		metrics.DeliveriesTotal.WithLabelValues(string(alert.DeliveryType)).Inc()
	}
	return nil
}
