package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqliteOrganizationRepo struct {
	db *sql.DB
}

func (r *sqliteOrganizationRepo) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, org.ID, org.Name, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (r *sqliteOrganizationRepo) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?`
	return r.scanOrganization(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteOrganizationRepo) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `SELECT id, name, created_at, updated_at FROM organizations WHERE name = ?`
	return r.scanOrganization(r.db.QueryRowContext(ctx, query, name))
}

func (r *sqliteOrganizationRepo) List(ctx context.Context) ([]*models.Organization, error) {
	query := `SELECT id, name, created_at, updated_at FROM organizations ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (r *sqliteOrganizationRepo) scanOrganization(row *sql.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return org, nil
}
