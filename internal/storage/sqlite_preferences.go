package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqlitePreferenceRepo struct {
	db *sql.DB
}

func (r *sqlitePreferenceRepo) Get(ctx context.Context, userID, alertID string) (*models.Preference, error) {
	query := `
		SELECT id, user_id, alert_id, is_read, snoozed_until
		FROM preferences WHERE user_id = ? AND alert_id = ?
	`
	pref := &models.Preference{}
	var isRead int
	var snoozed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID, alertID).Scan(
		&pref.ID, &pref.UserID, &pref.AlertID, &isRead, &snoozed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan preference: %w", err)
	}
	pref.IsRead = isRead != 0
	if snoozed.Valid {
		t := snoozed.Time
		pref.SnoozedUntil = &t
	}
	return pref, nil
}

// Upsert relies on the UNIQUE(user_id, alert_id) constraint: a concurrent
// insert for the same pair degrades to an update of the existing row.
func (r *sqlitePreferenceRepo) Upsert(ctx context.Context, pref *models.Preference) error {
	query := `
		INSERT INTO preferences (id, user_id, alert_id, is_read, snoozed_until)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, alert_id) DO UPDATE SET
			is_read = excluded.is_read,
			snoozed_until = excluded.snoozed_until
	`
	_, err := r.db.ExecContext(ctx, query,
		pref.ID, pref.UserID, pref.AlertID, boolToInt(pref.IsRead), nullTime(pref.SnoozedUntil),
	)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

func (r *sqlitePreferenceRepo) ListSnoozed(ctx context.Context, userID string, now time.Time) ([]*models.Preference, error) {
	query := `
		SELECT id, user_id, alert_id, is_read, snoozed_until
		FROM preferences
		WHERE user_id = ? AND snoozed_until IS NOT NULL AND snoozed_until > ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query snoozed preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		pref := &models.Preference{}
		var isRead int
		var snoozed sql.NullTime
		if err := rows.Scan(&pref.ID, &pref.UserID, &pref.AlertID, &isRead, &snoozed); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		pref.IsRead = isRead != 0
		if snoozed.Valid {
			t := snoozed.Time
			pref.SnoozedUntil = &t
		}
		prefs = append(prefs, pref)
	}
	return prefs, rows.Err()
}

func (r *sqlitePreferenceRepo) CountRead(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM preferences WHERE is_read = 1",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count read preferences: %w", err)
	}
	return count, nil
}

func (r *sqlitePreferenceRepo) SnoozeCounts(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT alert_id, COUNT(*)
		FROM preferences
		WHERE snoozed_until IS NOT NULL
		GROUP BY alert_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query snooze counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var alertID string
		var count int64
		if err := rows.Scan(&alertID, &count); err != nil {
			return nil, fmt.Errorf("scan snooze count: %w", err)
		}
		counts[alertID] = count
	}
	return counts, rows.Err()
}
