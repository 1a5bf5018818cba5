package models

import "time"

// Organization represents a top-level tenant that owns teams.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrganization creates a new Organization with initialized timestamps.
func NewOrganization(name string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Team represents a team within an organization.
type Team struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewTeam creates a new Team with initialized timestamps.
func NewTeam(name, organizationID string) *Team {
	now := time.Now().UTC()
	return &Team{
		Name:           name,
		OrganizationID: organizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// User represents an end user who receives alerts.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeamID    string    `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with initialized timestamps.
func NewUser(name, teamID string) *User {
	now := time.Now().UTC()
	return &User{
		Name:      name,
		TeamID:    teamID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
