// Package notifier provides delivery channels for alert notifications.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

// Channel is the interface for all delivery channels.
type Channel interface {
	// Name returns the channel name (e.g., "in_app", "email").
	Name() string
	// Send delivers the alert to the user.
	Send(ctx context.Context, user *models.User, alert *models.Alert) error
	// Close releases any resources.
	Close() error
}

// ErrChannelUnavailable is returned when an alert's delivery type has no
// registered channel. Email and SMS are declared delivery types but ship
// without a channel implementation.
var ErrChannelUnavailable = fmt.Errorf("delivery channel unavailable")

// Dispatcher routes each alert to the channel matching its delivery type.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[models.DeliveryType]Channel
	limiter  *rate.Limiter
}

// NewDispatcher creates a dispatcher with no throughput limit.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithLimit(rate.Inf, 0)
}

// NewDispatcherWithLimit creates a dispatcher that paces dispatches with
// a token bucket of the given rate and burst.
func NewDispatcherWithLimit(limit rate.Limit, burst int) *Dispatcher {
	return &Dispatcher{
		channels: make(map[models.DeliveryType]Channel),
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Register adds a channel for the given delivery type.
func (d *Dispatcher) Register(t models.DeliveryType, ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[t] = ch
}

// Get returns the channel registered for a delivery type.
func (d *Dispatcher) Get(t models.DeliveryType) (Channel, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ch, ok := d.channels[t]
	return ch, ok
}

// Dispatch sends the alert to the user over the channel matching the
// alert's delivery type. Returns ErrChannelUnavailable when no channel
// is registered for that type.
func (d *Dispatcher) Dispatch(ctx context.Context, user *models.User, alert *models.Alert) error {
	d.mu.RLock()
	ch, ok := d.channels[alert.DeliveryType]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", alert.DeliveryType, ErrChannelUnavailable)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("dispatch pacing: %w", err)
	}

	if err := ch.Send(ctx, user, alert); err != nil {
		return fmt.Errorf("%s: %w", ch.Name(), err)
	}
	return nil
}

// Close closes all registered channels.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for name, ch := range d.channels {
		if err := ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	d.channels = make(map[models.DeliveryType]Channel)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
