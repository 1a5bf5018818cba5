package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqliteDeliveryRepo struct {
	db *sql.DB
}

func (r *sqliteDeliveryRepo) Create(ctx context.Context, d *models.Delivery) error {
	query := `
		INSERT INTO deliveries (id, alert_id, user_id, delivered_at, read_status, reminder_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.AlertID, d.UserID, d.DeliveredAt, boolToInt(d.ReadStatus), d.ReminderCount,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *sqliteDeliveryRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deliveries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return count, nil
}

func (r *sqliteDeliveryRepo) ListByAlert(ctx context.Context, alertID string) ([]*models.Delivery, error) {
	query := `
		SELECT id, alert_id, user_id, delivered_at, read_status, reminder_count
		FROM deliveries WHERE alert_id = ? ORDER BY delivered_at
	`
	return r.queryDeliveries(ctx, query, alertID)
}

func (r *sqliteDeliveryRepo) ListByUser(ctx context.Context, userID string) ([]*models.Delivery, error) {
	query := `
		SELECT id, alert_id, user_id, delivered_at, read_status, reminder_count
		FROM deliveries WHERE user_id = ? ORDER BY delivered_at
	`
	return r.queryDeliveries(ctx, query, userID)
}

func (r *sqliteDeliveryRepo) queryDeliveries(ctx context.Context, query string, args ...any) ([]*models.Delivery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d := &models.Delivery{}
		var readStatus int
		if err := rows.Scan(&d.ID, &d.AlertID, &d.UserID, &d.DeliveredAt, &readStatus, &d.ReminderCount); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.ReadStatus = readStatus != 0
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
