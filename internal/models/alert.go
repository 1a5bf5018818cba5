// Package models defines domain models for AlertHub.
package models

import "time"

// Severity represents alert severity level.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// DeliveryType represents the channel an alert is dispatched on.
type DeliveryType string

const (
	DeliveryInApp DeliveryType = "in_app"
	DeliveryEmail DeliveryType = "email"
	DeliverySMS   DeliveryType = "sms"
)

// Valid returns true if the delivery type is a known value.
func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryInApp, DeliveryEmail, DeliverySMS:
		return true
	}
	return false
}

// Visibility represents the audience scope of an alert.
type Visibility string

const (
	VisibilityOrganization Visibility = "organization"
	VisibilityTeam         Visibility = "team"
	VisibilityUser         Visibility = "user"
)

// Valid returns true if the visibility is a known value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityOrganization, VisibilityTeam, VisibilityUser:
		return true
	}
	return false
}

// Alert represents an administrator-authored notification with a time
// window, severity, and audience scope.
type Alert struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`

	Severity     Severity     `json:"severity"`
	DeliveryType DeliveryType `json:"delivery_type"`

	// ReminderFrequency is the per-alert reminder cadence in hours. It is
	// stored for compatibility but the engine runs on one global interval.
	ReminderFrequency int `json:"reminder_frequency"`

	StartTime  time.Time `json:"start_time"`
	ExpiryTime time.Time `json:"expiry_time"`

	Visibility Visibility `json:"visibility"`
	IsActive   bool       `json:"is_active"`
	Archived   bool       `json:"archived"`

	// Scoping references. Exactly the ones matching Visibility are set:
	// organization alerts carry OrganizationID, team alerts carry
	// OrganizationID+TeamID, user alerts carry all three (team fields
	// empty when the user has no team).
	OrganizationID string `json:"organization_id,omitempty"`
	TeamID         string `json:"team_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActiveAt returns true if the alert is live at the given instant.
func (a *Alert) ActiveAt(now time.Time) bool {
	return a.IsActive && !a.Archived &&
		!a.StartTime.After(now) && !a.ExpiryTime.Before(now)
}

// AlertTeam is a materialized (alert, team) audience link row.
type AlertTeam struct {
	ID      string `json:"id"`
	AlertID string `json:"alert_id"`
	TeamID  string `json:"team_id"`
}

// AlertUser is a materialized (alert, user) audience link row.
type AlertUser struct {
	ID      string `json:"id"`
	AlertID string `json:"alert_id"`
	UserID  string `json:"user_id"`
}
