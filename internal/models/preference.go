package models

import "time"

// Preference holds a user's acknowledgement state for one alert:
// read/unread plus an optional snooze deadline. Exactly one row exists
// per (user, alert) pair; it is created lazily on first interaction and
// overwritten in place afterwards.
type Preference struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	AlertID      string     `json:"alert_id"`
	IsRead       bool       `json:"is_read"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
}

// SnoozedAt returns true if the preference carries a snooze deadline
// that is still in the future at the given instant.
func (p *Preference) SnoozedAt(now time.Time) bool {
	return p != nil && p.SnoozedUntil != nil && p.SnoozedUntil.After(now)
}
