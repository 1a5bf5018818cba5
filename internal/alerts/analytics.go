package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

// Analytics is the reporting rollup over alerts, deliveries, and
// acknowledgement state. Delivered and Read are raw row counts, not
// distinct user counts.
type Analytics struct {
	TotalAlerts       int64            `json:"total_alerts"`
	Delivered         int64            `json:"delivered"`
	Read              int64            `json:"read"`
	SnoozedPerAlert   map[string]int64 `json:"snoozed_per_alert"`
	SeverityBreakdown map[string]int64 `json:"severity_breakdown"`
}

// Analytics computes the current rollup. TotalAlerts counts every
// alert, archived ones included. The severity breakdown is keyed by the
// display title rebuilt from the link tables against current directory
// names, so a renamed team or user shows up under its new name.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	total, err := s.store.Alerts().Count(ctx)
	if err != nil {
		return nil, err
	}
	delivered, err := s.store.Deliveries().Count(ctx)
	if err != nil {
		return nil, err
	}
	read, err := s.store.Preferences().CountRead(ctx)
	if err != nil {
		return nil, err
	}
	snoozed, err := s.store.Preferences().SnoozeCounts(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.store.Alerts().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	breakdown := make(map[string]int64, len(alerts))
	for _, alert := range alerts {
		title, err := s.displayTitle(ctx, alert)
		if err != nil {
			return nil, err
		}
		breakdown[title]++
	}

	return &Analytics{
		TotalAlerts:       total,
		Delivered:         delivered,
		Read:              read,
		SnoozedPerAlert:   snoozed,
		SeverityBreakdown: breakdown,
	}, nil
}

// displayTitle rebuilds the scope-prefixed title from the alert's link
// rows. Stored titles already carry the prefix from creation time; the
// current one is stripped and re-applied so the key tracks directory
// renames instead of the snapshot.
func (s *Service) displayTitle(ctx context.Context, alert *models.Alert) (string, error) {
	switch alert.Visibility {
	case models.VisibilityTeam:
		links, err := s.store.Alerts().TeamLinks(ctx, alert.ID)
		if err != nil {
			return "", err
		}
		if len(links) == 0 {
			return alert.Title, nil
		}
		team, err := s.store.Teams().GetByID(ctx, links[0].TeamID)
		if err != nil {
			return "", err
		}
		if team == nil {
			return alert.Title, nil
		}
		prefix := fmt.Sprintf("%s: ", team.Name)
		return prefix + strings.TrimPrefix(alert.Title, prefix), nil

	case models.VisibilityUser:
		links, err := s.store.Alerts().UserLinks(ctx, alert.ID)
		if err != nil {
			return "", err
		}
		if len(links) == 0 {
			return alert.Title, nil
		}
		user, err := s.store.Users().GetByID(ctx, links[0].UserID)
		if err != nil {
			return "", err
		}
		if user == nil {
			return alert.Title, nil
		}
		prefix := fmt.Sprintf("%s: ", user.Name)
		if user.TeamID != "" {
			team, err := s.store.Teams().GetByID(ctx, user.TeamID)
			if err != nil {
				return "", err
			}
			if team != nil {
				prefix = fmt.Sprintf("%s/%s: ", team.Name, user.Name)
			}
		}
		return prefix + strings.TrimPrefix(alert.Title, prefix), nil
	}
	return alert.Title, nil
}
