package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

// InAppChannel delivers alerts by appending a row to the delivery log.
// It is the only concrete channel; email and SMS remain extension points.
type InAppChannel struct {
	deliveries storage.DeliveryRepository
}

// NewInAppChannel creates an in-app channel writing to the given
// delivery log.
func NewInAppChannel(deliveries storage.DeliveryRepository) *InAppChannel {
	return &InAppChannel{deliveries: deliveries}
}

// Name returns the channel name.
func (c *InAppChannel) Name() string {
	return "in_app"
}

// Send appends one delivery record for the (alert, user) pair. The
// reminder count is written as 1 on every attempt; it is not an
// accumulating counter.
func (c *InAppChannel) Send(ctx context.Context, user *models.User, alert *models.Alert) error {
	d := &models.Delivery{
		ID:            uuid.New().String(),
		AlertID:       alert.ID,
		UserID:        user.ID,
		DeliveredAt:   time.Now().UTC(),
		ReadStatus:    false,
		ReminderCount: 1,
	}
	if err := c.deliveries.Create(ctx, d); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

// Close releases resources. The in-app channel holds none.
func (c *InAppChannel) Close() error {
	return nil
}
