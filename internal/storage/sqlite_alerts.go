package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqliteAlertRepo struct {
	db *sql.DB
}

const alertColumns = `id, title, message, severity, delivery_type, reminder_frequency_hours,
	start_time, expiry_time, visibility, is_active, archived,
	organization_id, team_id, user_id, created_at, updated_at`

func (r *sqliteAlertRepo) CreateWithLinks(ctx context.Context, alert *models.Alert, teamIDs, userIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create alert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		alert.ID, alert.Title, alert.Message, alert.Severity, alert.DeliveryType,
		alert.ReminderFrequency, alert.StartTime, alert.ExpiryTime, alert.Visibility,
		boolToInt(alert.IsActive), boolToInt(alert.Archived),
		nullString(alert.OrganizationID), nullString(alert.TeamID), nullString(alert.UserID),
		alert.CreatedAt, alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	for _, teamID := range teamIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO alert_teams (id, alert_id, team_id) VALUES (?, ?, ?)",
			uuid.New().String(), alert.ID, teamID,
		)
		if err != nil {
			return fmt.Errorf("insert alert team link: %w", err)
		}
	}

	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO alert_users (id, alert_id, user_id) VALUES (?, ?, ?)",
			uuid.New().String(), alert.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("insert alert user link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create alert: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	return alert, nil
}

func (r *sqliteAlertRepo) Update(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts SET title = ?, message = ?, severity = ?, delivery_type = ?,
			reminder_frequency_hours = ?, start_time = ?, expiry_time = ?,
			is_active = ?, archived = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		alert.Title, alert.Message, alert.Severity, alert.DeliveryType,
		alert.ReminderFrequency, alert.StartTime, alert.ExpiryTime,
		boolToInt(alert.IsActive), boolToInt(alert.Archived), alert.UpdatedAt,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("alert %s: %w", alert.ID, ErrNotFound)
	}
	return nil
}

func (r *sqliteAlertRepo) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET archived = 1, is_active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("archive alert: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *sqliteAlertRepo) List(ctx context.Context, filter AlertFilter) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE archived = 0`
	var args []any
	if filter.Severity != nil {
		query += " AND severity = ?"
		args = append(args, *filter.Severity)
	}
	if filter.Active != nil {
		query += " AND is_active = ?"
		args = append(args, boolToInt(*filter.Active))
	}
	if filter.Visibility != nil {
		query += " AND visibility = ?"
		args = append(args, *filter.Visibility)
	}
	query += " ORDER BY created_at DESC"
	return r.queryAlerts(ctx, query, args...)
}

func (r *sqliteAlertRepo) ListAll(ctx context.Context) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY created_at DESC`
	return r.queryAlerts(ctx, query)
}

func (r *sqliteAlertRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return count, nil
}

func (r *sqliteAlertRepo) ListByIDs(ctx context.Context, ids []string) ([]*models.Alert, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT `+alertColumns+` FROM alerts WHERE id IN (%s) ORDER BY created_at DESC`,
		placeholders(len(ids)),
	)
	return r.queryAlerts(ctx, query, stringArgs(ids)...)
}

func (r *sqliteAlertRepo) ListActive(ctx context.Context, now time.Time) ([]*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + ` FROM alerts
		WHERE is_active = 1 AND archived = 0 AND start_time <= ? AND expiry_time >= ?
		ORDER BY created_at
	`
	now = now.UTC()
	return r.queryAlerts(ctx, query, now, now)
}

func (r *sqliteAlertRepo) ListActiveByOrganization(ctx context.Context, orgID string, now time.Time) ([]*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + ` FROM alerts
		WHERE is_active = 1 AND archived = 0 AND start_time <= ? AND expiry_time >= ?
			AND visibility = ? AND organization_id = ?
		ORDER BY created_at
	`
	now = now.UTC()
	return r.queryAlerts(ctx, query, now, now, models.VisibilityOrganization, orgID)
}

func (r *sqliteAlertRepo) ListActiveForTeam(ctx context.Context, teamID string, now time.Time) ([]*models.Alert, error) {
	query := `
		SELECT ` + prefixedAlertColumns("a") + ` FROM alerts a
		INNER JOIN alert_teams at ON at.alert_id = a.id
		WHERE at.team_id = ? AND a.is_active = 1 AND a.archived = 0
			AND a.start_time <= ? AND a.expiry_time >= ? AND a.visibility = ?
		ORDER BY a.created_at
	`
	now = now.UTC()
	return r.queryAlerts(ctx, query, teamID, now, now, models.VisibilityTeam)
}

func (r *sqliteAlertRepo) ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]*models.Alert, error) {
	query := `
		SELECT ` + prefixedAlertColumns("a") + ` FROM alerts a
		INNER JOIN alert_users au ON au.alert_id = a.id
		WHERE au.user_id = ? AND a.is_active = 1 AND a.archived = 0
			AND a.start_time <= ? AND a.expiry_time >= ? AND a.visibility = ?
		ORDER BY a.created_at
	`
	now = now.UTC()
	return r.queryAlerts(ctx, query, userID, now, now, models.VisibilityUser)
}

func (r *sqliteAlertRepo) TeamLinks(ctx context.Context, alertID string) ([]*models.AlertTeam, error) {
	query := `SELECT id, alert_id, team_id FROM alert_teams WHERE alert_id = ?`
	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("query alert team links: %w", err)
	}
	defer rows.Close()

	var links []*models.AlertTeam
	for rows.Next() {
		link := &models.AlertTeam{}
		if err := rows.Scan(&link.ID, &link.AlertID, &link.TeamID); err != nil {
			return nil, fmt.Errorf("scan alert team link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *sqliteAlertRepo) UserLinks(ctx context.Context, alertID string) ([]*models.AlertUser, error) {
	query := `SELECT id, alert_id, user_id FROM alert_users WHERE alert_id = ?`
	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("query alert user links: %w", err)
	}
	defer rows.Close()

	var links []*models.AlertUser
	for rows.Next() {
		link := &models.AlertUser{}
		if err := rows.Scan(&link.ID, &link.AlertID, &link.UserID); err != nil {
			return nil, fmt.Errorf("scan alert user link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *sqliteAlertRepo) queryAlerts(ctx context.Context, query string, args ...any) ([]*models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (*models.Alert, error) {
	alert := &models.Alert{}
	var orgID, teamID, userID sql.NullString
	var isActive, archived int

	err := row.Scan(
		&alert.ID, &alert.Title, &alert.Message, &alert.Severity, &alert.DeliveryType,
		&alert.ReminderFrequency, &alert.StartTime, &alert.ExpiryTime, &alert.Visibility,
		&isActive, &archived, &orgID, &teamID, &userID,
		&alert.CreatedAt, &alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.IsActive = isActive != 0
	alert.Archived = archived != 0
	alert.OrganizationID = orgID.String
	alert.TeamID = teamID.String
	alert.UserID = userID.String
	return alert, nil
}

func prefixedAlertColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.message, ` + alias + `.severity,
		` + alias + `.delivery_type, ` + alias + `.reminder_frequency_hours,
		` + alias + `.start_time, ` + alias + `.expiry_time, ` + alias + `.visibility,
		` + alias + `.is_active, ` + alias + `.archived, ` + alias + `.organization_id,
		` + alias + `.team_id, ` + alias + `.user_id, ` + alias + `.created_at, ` + alias + `.updated_at`
}
