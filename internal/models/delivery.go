package models

import "time"

// Delivery records one attempt to notify a user about an alert.
// Rows are append-only and never updated.
type Delivery struct {
	ID          string    `json:"id"`
	AlertID     string    `json:"alert_id"`
	UserID      string    `json:"user_id"`
	DeliveredAt time.Time `json:"delivered_at"`

	// ReadStatus is a legacy column kept for schema compatibility; the
	// read path consults preferences, never this flag.
	ReadStatus bool `json:"read_status"`

	ReminderCount int `json:"reminder_count"`
}
