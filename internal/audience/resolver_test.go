package audience

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

func setupTestStore(t *testing.T) (*storage.SQLiteStorage, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "alerthub-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	store := storage.NewSQLiteStorage(filepath.Join(tmpDir, "test.db"))
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	return store, func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}
}

func createOrg(t *testing.T, store storage.Storage, name string) *models.Organization {
	t.Helper()
	org := models.NewOrganization(name)
	org.ID = uuid.New().String()
	if err := store.Organizations().Create(context.Background(), org); err != nil {
		t.Fatalf("create org: %v", err)
	}
	return org
}

func createTeam(t *testing.T, store storage.Storage, name, orgID string) *models.Team {
	t.Helper()
	team := models.NewTeam(name, orgID)
	team.ID = uuid.New().String()
	if err := store.Teams().Create(context.Background(), team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func createUser(t *testing.T, store storage.Storage, name, teamID string) *models.User {
	t.Helper()
	user := models.NewUser(name, teamID)
	user.ID = uuid.New().String()
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAlert(t *testing.T, store storage.Storage, alert *models.Alert, teamIDs, userIDs []string) {
	t.Helper()
	if err := store.Alerts().CreateWithLinks(context.Background(), alert, teamIDs, userIDs); err != nil {
		t.Fatalf("create alert: %v", err)
	}
}

func baseAlert(visibility models.Visibility) *models.Alert {
	now := time.Now().UTC()
	return &models.Alert{
		ID:                uuid.New().String(),
		Title:             "Audience Test",
		Message:           "msg",
		Severity:          models.SeverityInfo,
		DeliveryType:      models.DeliveryInApp,
		ReminderFrequency: 2,
		StartTime:         now.Add(-time.Hour),
		ExpiryTime:        now.Add(time.Hour),
		Visibility:        visibility,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func userIDs(users []*models.User) map[string]bool {
	ids := make(map[string]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	return ids
}

func TestResolve_Organization_LiveMembership(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	org := createOrg(t, store, "Acme Corp")
	eng := createTeam(t, store, "Engineering", org.ID)
	alice := createUser(t, store, "Alice", eng.ID)

	alert := baseAlert(models.VisibilityOrganization)
	alert.OrganizationID = org.ID
	createAlert(t, store, alert, []string{eng.ID}, []string{alice.ID})

	resolver := NewResolver(store)

	users, err := resolver.Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("audience = %d, want 1", len(users))
	}

	// A user joining the org after creation is picked up on the next
	// resolve; the link snapshot plays no part for org alerts.
	bob := createUser(t, store, "Bob", eng.ID)

	users, err = resolver.Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve after join: %v", err)
	}
	ids := userIDs(users)
	if len(users) != 2 || !ids[alice.ID] || !ids[bob.ID] {
		t.Errorf("audience = %v, want alice and bob", ids)
	}
}

func TestResolve_Organization_ExcludesOtherOrgs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	org := createOrg(t, store, "Acme Corp")
	eng := createTeam(t, store, "Engineering", org.ID)
	alice := createUser(t, store, "Alice", eng.ID)

	other := createOrg(t, store, "Globex")
	sales := createTeam(t, store, "Sales", other.ID)
	createUser(t, store, "Mallory", sales.ID)

	// Teamless users belong to no org.
	createUser(t, store, "Drifter", "")

	alert := baseAlert(models.VisibilityOrganization)
	alert.OrganizationID = org.ID
	createAlert(t, store, alert, nil, nil)

	users, err := NewResolver(store).Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(users) != 1 || users[0].ID != alice.ID {
		t.Errorf("audience = %d users, want alice only", len(users))
	}
}

func TestResolve_Team_FrozenTeamsLiveMembers(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	org := createOrg(t, store, "Acme Corp")
	fin := createTeam(t, store, "Finance", org.ID)
	mkt := createTeam(t, store, "Marketing", org.ID)
	eve := createUser(t, store, "Eve", fin.ID)
	createUser(t, store, "Carol", mkt.ID)

	alert := baseAlert(models.VisibilityTeam)
	alert.OrganizationID = org.ID
	alert.TeamID = fin.ID
	createAlert(t, store, alert, []string{fin.ID}, []string{eve.ID})

	resolver := NewResolver(store)

	users, err := resolver.Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(users) != 1 || users[0].ID != eve.ID {
		t.Fatalf("audience = %d users, want eve only", len(users))
	}

	// New member of the linked team joins the audience; the set of
	// linked teams itself never grows.
	frank := createUser(t, store, "Frank", fin.ID)

	users, err = resolver.Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve after join: %v", err)
	}
	ids := userIDs(users)
	if len(users) != 2 || !ids[eve.ID] || !ids[frank.ID] {
		t.Errorf("audience = %v, want eve and frank", ids)
	}
}

func TestResolve_User_Snapshot(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	org := createOrg(t, store, "Acme Corp")
	fin := createTeam(t, store, "Finance", org.ID)
	eve := createUser(t, store, "Eve", fin.ID)
	createUser(t, store, "Frank", fin.ID)

	alert := baseAlert(models.VisibilityUser)
	alert.OrganizationID = org.ID
	alert.TeamID = fin.ID
	alert.UserID = eve.ID
	createAlert(t, store, alert, []string{fin.ID}, []string{eve.ID})

	users, err := NewResolver(store).Resolve(ctx, alert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(users) != 1 || users[0].ID != eve.ID {
		t.Errorf("audience = %d users, want eve only", len(users))
	}
}

func TestResolve_UnknownVisibility(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	alert := baseAlert(models.Visibility("broadcast"))
	users, err := NewResolver(store).Resolve(context.Background(), alert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("unknown visibility should resolve to empty audience, got %d", len(users))
	}
}
