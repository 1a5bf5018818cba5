package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqliteTeamRepo struct {
	db *sql.DB
}

func (r *sqliteTeamRepo) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		team.ID, team.Name, nullString(team.OrganizationID), team.CreatedAt, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (r *sqliteTeamRepo) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT id, name, organization_id, created_at, updated_at FROM teams WHERE id = ?`
	team := &models.Team{}
	var orgID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &orgID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	team.OrganizationID = orgID.String
	return team, nil
}

func (r *sqliteTeamRepo) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT id, name, organization_id, created_at, updated_at FROM teams ORDER BY name`
	return r.queryTeams(ctx, query)
}

func (r *sqliteTeamRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.Team, error) {
	query := `
		SELECT id, name, organization_id, created_at, updated_at
		FROM teams WHERE organization_id = ? ORDER BY name
	`
	return r.queryTeams(ctx, query, orgID)
}

func (r *sqliteTeamRepo) queryTeams(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		var org sql.NullString
		if err := rows.Scan(&team.ID, &team.Name, &org, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		team.OrganizationID = org.String
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
