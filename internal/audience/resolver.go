// Package audience computes the set of users an alert currently applies
// to. Organization alerts resolve dynamically against live directory
// membership; team alerts resolve to the current members of the teams
// linked at creation time; user alerts resolve from the user link rows
// snapshotted at creation time. The strategies are kept separate on
// purpose: unifying them would change which users newly added to a team
// or organization see reminders for existing alerts.
package audience

import (
	"context"

	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

// Resolver resolves an alert to its current audience. It is read-only
// and safe for concurrent use.
type Resolver struct {
	org  orgStrategy
	team teamLinkStrategy
	user userLinkStrategy
}

// NewResolver creates a resolver over the given store.
func NewResolver(store storage.Storage) *Resolver {
	return &Resolver{
		org:  orgStrategy{store: store},
		team: teamLinkStrategy{store: store},
		user: userLinkStrategy{store: store},
	}
}

// Resolve returns the users the alert currently targets. Unknown
// visibility resolves to an empty audience.
func (r *Resolver) Resolve(ctx context.Context, alert *models.Alert) ([]*models.User, error) {
	switch alert.Visibility {
	case models.VisibilityOrganization:
		return r.org.resolve(ctx, alert)
	case models.VisibilityTeam:
		return r.team.resolve(ctx, alert)
	case models.VisibilityUser:
		return r.user.resolve(ctx, alert)
	}
	return nil, nil
}

// orgStrategy resolves organization alerts from live directory state:
// every user whose team belongs to the alert's organization. Link
// tables are ignored entirely, so users who join the organization after
// the alert was created are included.
type orgStrategy struct {
	store storage.Storage
}

func (s orgStrategy) resolve(ctx context.Context, alert *models.Alert) ([]*models.User, error) {
	if alert.OrganizationID == "" {
		return nil, nil
	}
	return s.store.Users().ListByOrganization(ctx, alert.OrganizationID)
}

// teamLinkStrategy resolves team alerts to the current members of every
// team linked when the alert was created. The set of teams is frozen at
// creation; membership within those teams is read live, so users who
// join a linked team afterwards are part of the audience.
type teamLinkStrategy struct {
	store storage.Storage
}

func (s teamLinkStrategy) resolve(ctx context.Context, alert *models.Alert) ([]*models.User, error) {
	links, err := s.store.Alerts().TeamLinks(ctx, alert.ID)
	if err != nil {
		return nil, err
	}
	teamIDs := make([]string, 0, len(links))
	for _, link := range links {
		teamIDs = append(teamIDs, link.TeamID)
	}
	return s.store.Users().ListByTeams(ctx, teamIDs)
}

// userLinkStrategy resolves user alerts from the alert_users rows
// written when the alert was created. The snapshot is authoritative.
type userLinkStrategy struct {
	store storage.Storage
}

func (s userLinkStrategy) resolve(ctx context.Context, alert *models.Alert) ([]*models.User, error) {
	links, err := s.store.Alerts().UserLinks(ctx, alert.ID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(links))
	for _, link := range links {
		userIDs = append(userIDs, link.UserID)
	}
	return s.store.Users().ListByIDs(ctx, userIDs)
}
