// Package alerts implements alert administration: creation with audience
// propagation, updates, archiving, the user-facing read paths, the
// acknowledgement state machine, and analytics rollups.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/metrics"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

// Service carries the alert business logic over the storage layer.
type Service struct {
	store storage.Storage
}

// NewService creates a new alert service.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// CreateInput carries the fields for a new alert. Exactly the scoping id
// matching Visibility must be set: OrganizationID for organization
// alerts, TeamID for team alerts, UserID for user alerts.
type CreateInput struct {
	Title             string
	Message           string
	Severity          models.Severity
	DeliveryType      models.DeliveryType
	ReminderFrequency int
	StartTime         time.Time
	ExpiryTime        time.Time
	Visibility        models.Visibility
	OrganizationID    string
	TeamID            string
	UserID            string
}

// Create persists a new alert and materializes its audience link rows in
// one transaction. The link rows snapshot the directory at creation
// time; for organization alerts the snapshot is recorded for audit
// display only and is never consulted by audience resolution.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Alert, error) {
	now := time.Now().UTC()
	alert := &models.Alert{
		ID:                uuid.New().String(),
		Title:             in.Title,
		Message:           in.Message,
		Severity:          in.Severity,
		DeliveryType:      in.DeliveryType,
		ReminderFrequency: in.ReminderFrequency,
		StartTime:         in.StartTime.UTC(),
		ExpiryTime:        in.ExpiryTime.UTC(),
		Visibility:        in.Visibility,
		IsActive:          true,
		Archived:          false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if alert.ReminderFrequency <= 0 {
		alert.ReminderFrequency = 2
	}

	var teamIDs, userIDs []string

	switch in.Visibility {
	case models.VisibilityOrganization:
		org, err := s.store.Organizations().GetByID(ctx, in.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, ErrOrganizationNotFound
		}
		alert.OrganizationID = org.ID

		teams, err := s.store.Teams().ListByOrganization(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		for _, team := range teams {
			teamIDs = append(teamIDs, team.ID)
			members, err := s.store.Users().ListByTeam(ctx, team.ID)
			if err != nil {
				return nil, err
			}
			for _, member := range members {
				userIDs = append(userIDs, member.ID)
			}
		}

	case models.VisibilityTeam:
		team, err := s.store.Teams().GetByID(ctx, in.TeamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, ErrTeamNotFound
		}
		alert.Title = fmt.Sprintf("%s: %s", team.Name, in.Title)
		alert.OrganizationID = team.OrganizationID
		alert.TeamID = team.ID

		teamIDs = append(teamIDs, team.ID)
		members, err := s.store.Users().ListByTeam(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		for _, member := range members {
			userIDs = append(userIDs, member.ID)
		}

	case models.VisibilityUser:
		user, err := s.store.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		alert.UserID = user.ID
		userIDs = append(userIDs, user.ID)

		if user.TeamID != "" {
			team, err := s.store.Teams().GetByID(ctx, user.TeamID)
			if err != nil {
				return nil, err
			}
			if team != nil {
				alert.Title = fmt.Sprintf("%s/%s: %s", team.Name, user.Name, in.Title)
				alert.OrganizationID = team.OrganizationID
				alert.TeamID = team.ID
				teamIDs = append(teamIDs, team.ID)
			}
		}
		if alert.TeamID == "" {
			alert.Title = fmt.Sprintf("%s: %s", user.Name, in.Title)
		}

	default:
		return nil, ErrInvalidVisibility
	}

	if err := s.store.Alerts().CreateWithLinks(ctx, alert, teamIDs, userIDs); err != nil {
		return nil, err
	}

	metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Visibility)).Inc()
	return alert, nil
}

// UpdateInput is a partial patch for an alert. Nil fields are left
// unchanged. Visibility and scoping references are immutable after
// creation; re-scoping requires archiving and recreating the alert.
type UpdateInput struct {
	Title             *string
	Message           *string
	Severity          *models.Severity
	DeliveryType      *models.DeliveryType
	ReminderFrequency *int
	StartTime         *time.Time
	ExpiryTime        *time.Time
	IsActive          *bool
}

// Update applies a partial patch to an existing alert.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Alert, error) {
	alert, err := s.store.Alerts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}

	if in.Title != nil {
		alert.Title = *in.Title
	}
	if in.Message != nil {
		alert.Message = *in.Message
	}
	if in.Severity != nil {
		alert.Severity = *in.Severity
	}
	if in.DeliveryType != nil {
		alert.DeliveryType = *in.DeliveryType
	}
	if in.ReminderFrequency != nil {
		alert.ReminderFrequency = *in.ReminderFrequency
	}
	if in.StartTime != nil {
		alert.StartTime = in.StartTime.UTC()
	}
	if in.ExpiryTime != nil {
		alert.ExpiryTime = in.ExpiryTime.UTC()
	}
	if in.IsActive != nil {
		alert.IsActive = *in.IsActive
	}
	alert.UpdatedAt = time.Now().UTC()

	if err := s.store.Alerts().Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Archive soft-deletes an alert: archived=true and is_active=false in
// one atomic change. Archived alerts leave all listings, read paths, and
// future reminder passes.
func (s *Service) Archive(ctx context.Context, id string) error {
	if err := s.store.Alerts().Archive(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	metrics.AlertsArchivedTotal.Inc()
	return nil
}

// List returns non-archived alerts matching the filter.
func (s *Service) List(ctx context.Context, filter storage.AlertFilter) ([]*models.Alert, error) {
	return s.store.Alerts().List(ctx, filter)
}

// Get returns one alert by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := s.store.Alerts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}
	return alert, nil
}
