package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

type sqliteUserRepo struct {
	db *sql.DB
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, team_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, nullString(user.TeamID), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, team_id, created_at, updated_at FROM users WHERE id = ?`
	user := &models.User{}
	var teamID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &teamID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.TeamID = teamID.String
	return user, nil
}

func (r *sqliteUserRepo) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, name, team_id, created_at, updated_at FROM users ORDER BY name`
	return r.queryUsers(ctx, query)
}

func (r *sqliteUserRepo) ListByTeam(ctx context.Context, teamID string) ([]*models.User, error) {
	query := `
		SELECT id, name, team_id, created_at, updated_at
		FROM users WHERE team_id = ? ORDER BY name
	`
	return r.queryUsers(ctx, query, teamID)
}

func (r *sqliteUserRepo) ListByTeams(ctx context.Context, teamIDs []string) ([]*models.User, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, name, team_id, created_at, updated_at
		FROM users WHERE team_id IN (%s) ORDER BY name
	`, placeholders(len(teamIDs)))
	return r.queryUsers(ctx, query, stringArgs(teamIDs)...)
}

func (r *sqliteUserRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error) {
	query := `
		SELECT u.id, u.name, u.team_id, u.created_at, u.updated_at
		FROM users u
		INNER JOIN teams t ON t.id = u.team_id
		WHERE t.organization_id = ?
		ORDER BY u.name
	`
	return r.queryUsers(ctx, query, orgID)
}

func (r *sqliteUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, name, team_id, created_at, updated_at
		FROM users WHERE id IN (%s) ORDER BY name
	`, placeholders(len(ids)))
	return r.queryUsers(ctx, query, stringArgs(ids)...)
}

func (r *sqliteUserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var teamID sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &teamID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.TeamID = teamID.String
		users = append(users, user)
	}
	return users, rows.Err()
}
