package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Organizations table
			CREATE TABLE IF NOT EXISTS organizations (
				id TEXT PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Teams table
			CREATE TABLE IF NOT EXISTS teams (
				id TEXT PRIMARY KEY,
				name TEXT UNIQUE NOT NULL,
				organization_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL
			);

			-- Users table
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				team_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE SET NULL
			);

			-- Alerts table
			CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				severity TEXT NOT NULL,
				delivery_type TEXT NOT NULL,
				reminder_frequency_hours INTEGER NOT NULL DEFAULT 2,
				start_time DATETIME NOT NULL,
				expiry_time DATETIME NOT NULL,
				visibility TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				archived INTEGER NOT NULL DEFAULT 0,
				organization_id TEXT,
				team_id TEXT,
				user_id TEXT,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (organization_id) REFERENCES organizations(id) ON DELETE SET NULL,
				FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE SET NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
			);

			-- Alert-Team audience links (creation-time snapshot)
			CREATE TABLE IF NOT EXISTS alert_teams (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				team_id TEXT NOT NULL,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE,
				FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
			);

			-- Alert-User audience links (creation-time snapshot)
			CREATE TABLE IF NOT EXISTS alert_users (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Delivery log (append-only)
			CREATE TABLE IF NOT EXISTS deliveries (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				user_id TEXT NOT NULL,
				delivered_at DATETIME NOT NULL,
				read_status INTEGER NOT NULL DEFAULT 0,
				reminder_count INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);

			-- Per-(user, alert) acknowledgement state
			CREATE TABLE IF NOT EXISTS preferences (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				alert_id TEXT NOT NULL,
				is_read INTEGER NOT NULL DEFAULT 0,
				snoozed_until DATETIME,
				UNIQUE (user_id, alert_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (alert_id) REFERENCES alerts(id) ON DELETE CASCADE
			);

			-- Indexes
			CREATE INDEX IF NOT EXISTS idx_teams_org ON teams(organization_id);
			CREATE INDEX IF NOT EXISTS idx_users_team ON users(team_id);
			CREATE INDEX IF NOT EXISTS idx_alerts_live ON alerts(is_active, archived);
			CREATE INDEX IF NOT EXISTS idx_alerts_org ON alerts(organization_id);
			CREATE INDEX IF NOT EXISTS idx_alert_teams_alert ON alert_teams(alert_id);
			CREATE INDEX IF NOT EXISTS idx_alert_teams_team ON alert_teams(team_id);
			CREATE INDEX IF NOT EXISTS idx_alert_users_alert ON alert_users(alert_id);
			CREATE INDEX IF NOT EXISTS idx_alert_users_user ON alert_users(user_id);
			CREATE INDEX IF NOT EXISTS idx_deliveries_alert ON deliveries(alert_id);
			CREATE INDEX IF NOT EXISTS idx_deliveries_user ON deliveries(user_id);
			CREATE INDEX IF NOT EXISTS idx_preferences_user ON preferences(user_id);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
