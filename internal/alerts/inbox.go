package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

// VisibleAlerts returns the alerts a user can currently see: active,
// non-archived, within their delivery window, drawn from the user's
// organization, the user's team links, and their direct user links.
// Duplicates across the three branches collapse to one entry. Read and
// snooze state never hide an alert from this view. An unknown user has
// an empty inbox, not an error.
func (s *Service) VisibleAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	var visible []*models.Alert
	seen := make(map[string]bool)
	add := func(alerts []*models.Alert) {
		for _, alert := range alerts {
			if seen[alert.ID] {
				continue
			}
			seen[alert.ID] = true
			visible = append(visible, alert)
		}
	}

	if user.TeamID != "" {
		team, err := s.store.Teams().GetByID(ctx, user.TeamID)
		if err != nil {
			return nil, err
		}
		if team != nil {
			orgAlerts, err := s.store.Alerts().ListActiveByOrganization(ctx, team.OrganizationID, now)
			if err != nil {
				return nil, err
			}
			add(orgAlerts)
		}

		teamAlerts, err := s.store.Alerts().ListActiveForTeam(ctx, user.TeamID, now)
		if err != nil {
			return nil, err
		}
		add(teamAlerts)
	}

	userAlerts, err := s.store.Alerts().ListActiveForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	add(userAlerts)

	return visible, nil
}

// SnoozedAlerts returns the alerts the user has snoozed whose snooze
// deadline has not yet passed. Expired snoozes drop out here without
// any row being rewritten. An unknown user has no snoozes.
func (s *Service) SnoozedAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	prefs, err := s.store.Preferences().ListSnoozed(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	alertIDs := make([]string, 0, len(prefs))
	for _, pref := range prefs {
		alertIDs = append(alertIDs, pref.AlertID)
	}

	alerts, err := s.store.Alerts().ListByIDs(ctx, alertIDs)
	if err != nil {
		return nil, err
	}
	filtered := alerts[:0]
	for _, alert := range alerts {
		if !alert.Archived {
			filtered = append(filtered, alert)
		}
	}
	return filtered, nil
}

// MarkRead records that the user has read the alert. The preference row
// is created on first interaction; repeating the call is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, alertID string) error {
	return s.setRead(ctx, userID, alertID, true)
}

// MarkUnread flips the alert back to unread for the user. Any snooze in
// place is left untouched.
func (s *Service) MarkUnread(ctx context.Context, userID, alertID string) error {
	return s.setRead(ctx, userID, alertID, false)
}

func (s *Service) setRead(ctx context.Context, userID, alertID string, read bool) error {
	pref, err := s.preference(ctx, userID, alertID)
	if err != nil {
		return err
	}
	pref.IsRead = read
	return s.store.Preferences().Upsert(ctx, pref)
}

// Snooze suppresses reminders for the (user, alert) pair until the end
// of the current UTC day. Snoozing again on the same day rewrites the
// same deadline; snoozing on a later day moves it forward.
func (s *Service) Snooze(ctx context.Context, userID, alertID string) error {
	pref, err := s.preference(ctx, userID, alertID)
	if err != nil {
		return err
	}
	until := endOfUTCDay(time.Now().UTC())
	pref.SnoozedUntil = &until
	return s.store.Preferences().Upsert(ctx, pref)
}

// preference loads the acknowledgement row for the pair, or builds a
// fresh unread one when the user has never interacted with the alert.
// Both sides of the pair must exist.
func (s *Service) preference(ctx context.Context, userID, alertID string) (*models.Preference, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	alert, err := s.store.Alerts().GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}

	pref, err := s.store.Preferences().Get(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		pref = &models.Preference{
			ID:      uuid.New().String(),
			UserID:  userID,
			AlertID: alertID,
			IsRead:  false,
		}
	}
	return pref, nil
}

func endOfUTCDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}
