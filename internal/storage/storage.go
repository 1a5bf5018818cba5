// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

// ErrNotFound is returned by mutating repository methods when the target
// row does not exist. Lookup methods return (nil, nil) instead.
var ErrNotFound = errors.New("not found")

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Organizations() OrganizationRepository
	Teams() TeamRepository
	Users() UserRepository
	Alerts() AlertRepository
	Deliveries() DeliveryRepository
	Preferences() PreferenceRepository
}

// OrganizationRepository defines operations for organization records.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

// TeamRepository defines operations for team records.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.Team, error)
}

// UserRepository defines operations for user records and directory
// membership queries.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.User, error)
	ListByTeams(ctx context.Context, teamIDs []string) ([]*models.User, error)
	// ListByOrganization returns users whose team belongs to the given
	// organization, from live directory state.
	ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

// AlertFilter narrows alert listings. Nil fields match everything.
type AlertFilter struct {
	Severity   *models.Severity
	Active     *bool
	Visibility *models.Visibility
}

// AlertRepository defines operations for alerts and their audience links.
type AlertRepository interface {
	// CreateWithLinks persists the alert together with its audience link
	// rows in a single transaction. Either all rows land or none do.
	CreateWithLinks(ctx context.Context, alert *models.Alert, teamIDs, userIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) error
	// Archive sets archived=1 and is_active=0 in one statement.
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error)
	// ListAll returns every alert including archived ones.
	ListAll(ctx context.Context) ([]*models.Alert, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Alert, error)
	// Count returns the total number of alerts, archived included.
	Count(ctx context.Context) (int64, error)

	// ListActive returns non-archived active alerts whose window covers now.
	ListActive(ctx context.Context, now time.Time) ([]*models.Alert, error)
	// ListActiveByOrganization returns live organization-visibility alerts
	// scoped to the given organization.
	ListActiveByOrganization(ctx context.Context, orgID string, now time.Time) ([]*models.Alert, error)
	// ListActiveForTeam returns live team-visibility alerts linked to the
	// given team via alert_teams.
	ListActiveForTeam(ctx context.Context, teamID string, now time.Time) ([]*models.Alert, error)
	// ListActiveForUser returns live user-visibility alerts linked to the
	// given user via alert_users.
	ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]*models.Alert, error)

	TeamLinks(ctx context.Context, alertID string) ([]*models.AlertTeam, error)
	UserLinks(ctx context.Context, alertID string) ([]*models.AlertUser, error)
}

// DeliveryRepository defines operations for the append-only delivery log.
type DeliveryRepository interface {
	Create(ctx context.Context, d *models.Delivery) error
	Count(ctx context.Context) (int64, error)
	ListByAlert(ctx context.Context, alertID string) ([]*models.Delivery, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Delivery, error)
}

// PreferenceRepository defines operations for per-(user, alert)
// acknowledgement state.
type PreferenceRepository interface {
	// Get returns the preference row for the pair, or (nil, nil) when the
	// pair has never been interacted with.
	Get(ctx context.Context, userID, alertID string) (*models.Preference, error)
	// Upsert inserts the row or, when the (user, alert) key already
	// exists, overwrites is_read and snoozed_until in place.
	Upsert(ctx context.Context, pref *models.Preference) error
	// ListSnoozed returns the user's preferences whose snooze deadline is
	// still in the future.
	ListSnoozed(ctx context.Context, userID string, now time.Time) ([]*models.Preference, error)
	CountRead(ctx context.Context) (int64, error)
	// SnoozeCounts returns, per alert id, the number of preference rows
	// carrying a non-null snooze deadline.
	SnoozeCounts(ctx context.Context) (map[string]int64, error)
}
