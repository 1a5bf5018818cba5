package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "alerthub-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")

	store := NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

// seedDirectory creates one org with one team and one member.
func seedDirectory(t *testing.T, store *SQLiteStorage) (*models.Organization, *models.Team, *models.User) {
	t.Helper()
	ctx := context.Background()

	org := models.NewOrganization("Acme Corp")
	org.ID = uuid.New().String()
	if err := store.Organizations().Create(ctx, org); err != nil {
		t.Fatalf("create org: %v", err)
	}

	team := models.NewTeam("Engineering", org.ID)
	team.ID = uuid.New().String()
	if err := store.Teams().Create(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	user := models.NewUser("Alice", team.ID)
	user.ID = uuid.New().String()
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	return org, team, user
}

func testAlert(visibility models.Visibility, now time.Time) *models.Alert {
	return &models.Alert{
		ID:                uuid.New().String(),
		Title:             "Test Alert",
		Message:           "something happened",
		Severity:          models.SeverityWarning,
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

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tables := []string{
		"organizations", "teams", "users", "alerts",
		"alert_teams", "alert_users", "deliveries", "preferences",
		"schema_migrations",
	}
	for _, table := range tables {
		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestOrganizationRepository_CRUD(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org := models.NewOrganization("Acme Corp")
	org.ID = uuid.New().String()

	if err := store.Organizations().Create(ctx, org); err != nil {
		t.Fatalf("create org: %v", err)
	}

	got, err := store.Organizations().GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("get org by id: %v", err)
	}
	if got == nil {
		t.Fatal("org should exist")
	}
	if got.Name != org.Name {
		t.Errorf("name = %v, want %v", got.Name, org.Name)
	}

	got, err = store.Organizations().GetByName(ctx, "Acme Corp")
	if err != nil {
		t.Fatalf("get org by name: %v", err)
	}
	if got == nil {
		t.Fatal("org should exist by name")
	}

	got, err = store.Organizations().GetByID(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing org: %v", err)
	}
	if got != nil {
		t.Error("missing org should return nil")
	}

	orgs, err := store.Organizations().List(ctx)
	if err != nil {
		t.Fatalf("list orgs: %v", err)
	}
	if len(orgs) != 1 {
		t.Errorf("orgs count = %d, want 1", len(orgs))
	}
}

func TestUserRepository_Membership(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, team, alice := seedDirectory(t, store)

	other := models.NewTeam("Marketing", org.ID)
	other.ID = uuid.New().String()
	if err := store.Teams().Create(ctx, other); err != nil {
		t.Fatalf("create team: %v", err)
	}
	bob := models.NewUser("Bob", other.ID)
	bob.ID = uuid.New().String()
	if err := store.Users().Create(ctx, bob); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// No team at all
	carol := models.NewUser("Carol", "")
	carol.ID = uuid.New().String()
	if err := store.Users().Create(ctx, carol); err != nil {
		t.Fatalf("create user without team: %v", err)
	}

	byTeam, err := store.Users().ListByTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("list by team: %v", err)
	}
	if len(byTeam) != 1 || byTeam[0].ID != alice.ID {
		t.Errorf("list by team = %d users, want alice only", len(byTeam))
	}

	byOrg, err := store.Users().ListByOrganization(ctx, org.ID)
	if err != nil {
		t.Fatalf("list by organization: %v", err)
	}
	if len(byOrg) != 2 {
		t.Errorf("org members = %d, want 2 (teamless users excluded)", len(byOrg))
	}

	byTeams, err := store.Users().ListByTeams(ctx, []string{team.ID, other.ID})
	if err != nil {
		t.Fatalf("list by teams: %v", err)
	}
	if len(byTeams) != 2 {
		t.Errorf("members across teams = %d, want 2", len(byTeams))
	}

	none, err := store.Users().ListByTeams(ctx, nil)
	if err != nil {
		t.Fatalf("list by empty teams: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("empty team set should yield no users, got %d", len(none))
	}
}

func TestAlertRepository_CreateWithLinks(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, team, user := seedDirectory(t, store)
	now := time.Now().UTC()

	alert := testAlert(models.VisibilityTeam, now)
	alert.OrganizationID = org.ID
	alert.TeamID = team.ID

	err := store.Alerts().CreateWithLinks(ctx, alert, []string{team.ID}, []string{user.ID})
	if err != nil {
		t.Fatalf("create alert with links: %v", err)
	}

	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if got == nil {
		t.Fatal("alert should exist")
	}
	if got.TeamID != team.ID {
		t.Errorf("team_id = %v, want %v", got.TeamID, team.ID)
	}
	if !got.IsActive || got.Archived {
		t.Errorf("alert should be active and not archived")
	}

	teamLinks, err := store.Alerts().TeamLinks(ctx, alert.ID)
	if err != nil {
		t.Fatalf("team links: %v", err)
	}
	if len(teamLinks) != 1 || teamLinks[0].TeamID != team.ID {
		t.Errorf("team links = %d, want 1 for %s", len(teamLinks), team.ID)
	}

	userLinks, err := store.Alerts().UserLinks(ctx, alert.ID)
	if err != nil {
		t.Fatalf("user links: %v", err)
	}
	if len(userLinks) != 1 || userLinks[0].UserID != user.ID {
		t.Errorf("user links = %d, want 1 for %s", len(userLinks), user.ID)
	}
}

func TestAlertRepository_CreateWithLinks_Atomic(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, team, _ := seedDirectory(t, store)
	now := time.Now().UTC()

	alert := testAlert(models.VisibilityTeam, now)
	alert.TeamID = team.ID

	// A user link referencing a missing user violates the foreign key,
	// which must roll back the alert row as well.
	err := store.Alerts().CreateWithLinks(ctx, alert, []string{team.ID}, []string{"missing-user"})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}

	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if got != nil {
		t.Error("alert row should have been rolled back")
	}
}

func TestAlertRepository_Archive(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, _, _ := seedDirectory(t, store)
	now := time.Now().UTC()

	alert := testAlert(models.VisibilityOrganization, now)
	alert.OrganizationID = org.ID
	if err := store.Alerts().CreateWithLinks(ctx, alert, nil, nil); err != nil {
		t.Fatalf("create alert: %v", err)
	}

	if err := store.Alerts().Archive(ctx, alert.ID); err != nil {
		t.Fatalf("archive alert: %v", err)
	}

	got, _ := store.Alerts().GetByID(ctx, alert.ID)
	if !got.Archived {
		t.Error("alert should be archived")
	}
	if got.IsActive {
		t.Error("archived alert should be inactive")
	}

	// Archived alerts leave all listings.
	listed, err := store.Alerts().List(ctx, AlertFilter{})
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("archived alert should not be listed, got %d", len(listed))
	}

	active, err := store.Alerts().ListActive(ctx, now)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("archived alert should not be active, got %d", len(active))
	}

	// But it still counts toward the total.
	count, err := store.Alerts().Count(ctx)
	if err != nil {
		t.Fatalf("count alerts: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	err = store.Alerts().Archive(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("archive missing alert = %v, want ErrNotFound", err)
	}
}

func TestAlertRepository_ListActive_Window(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, _, _ := seedDirectory(t, store)
	now := time.Now().UTC()

	current := testAlert(models.VisibilityOrganization, now)
	current.OrganizationID = org.ID

	expired := testAlert(models.VisibilityOrganization, now)
	expired.Title = "Expired"
	expired.StartTime = now.Add(-2 * time.Hour)
	expired.ExpiryTime = now.Add(-time.Hour)
	expired.OrganizationID = org.ID

	future := testAlert(models.VisibilityOrganization, now)
	future.Title = "Future"
	future.StartTime = now.Add(time.Hour)
	future.ExpiryTime = now.Add(2 * time.Hour)
	future.OrganizationID = org.ID

	inactive := testAlert(models.VisibilityOrganization, now)
	inactive.Title = "Inactive"
	inactive.IsActive = false
	inactive.OrganizationID = org.ID

	for _, a := range []*models.Alert{current, expired, future, inactive} {
		if err := store.Alerts().CreateWithLinks(ctx, a, nil, nil); err != nil {
			t.Fatalf("create alert %s: %v", a.Title, err)
		}
	}

	active, err := store.Alerts().ListActive(ctx, now)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != current.ID {
		t.Errorf("active alerts = %d, want only the in-window one", len(active))
	}

	byOrg, err := store.Alerts().ListActiveByOrganization(ctx, org.ID, now)
	if err != nil {
		t.Fatalf("list active by org: %v", err)
	}
	if len(byOrg) != 1 {
		t.Errorf("active org alerts = %d, want 1", len(byOrg))
	}
}

func TestDeliveryRepository_AppendOnly(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, _, user := seedDirectory(t, store)
	now := time.Now().UTC()

	alert := testAlert(models.VisibilityOrganization, now)
	alert.OrganizationID = org.ID
	if err := store.Alerts().CreateWithLinks(ctx, alert, nil, nil); err != nil {
		t.Fatalf("create alert: %v", err)
	}

	for i := 0; i < 3; i++ {
		d := &models.Delivery{
			ID:            uuid.New().String(),
			AlertID:       alert.ID,
			UserID:        user.ID,
			DeliveredAt:   now,
			ReminderCount: 1,
		}
		if err := store.Deliveries().Create(ctx, d); err != nil {
			t.Fatalf("create delivery %d: %v", i, err)
		}
	}

	count, err := store.Deliveries().Count(ctx)
	if err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 (no dedup across deliveries)", count)
	}

	byAlert, err := store.Deliveries().ListByAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("list by alert: %v", err)
	}
	if len(byAlert) != 3 {
		t.Errorf("deliveries for alert = %d, want 3", len(byAlert))
	}

	byUser, err := store.Deliveries().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(byUser) != 3 {
		t.Errorf("deliveries for user = %d, want 3", len(byUser))
	}
}

func TestPreferenceRepository_Upsert(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	org, _, user := seedDirectory(t, store)
	now := time.Now().UTC()

	alert := testAlert(models.VisibilityOrganization, now)
	alert.OrganizationID = org.ID
	if err := store.Alerts().CreateWithLinks(ctx, alert, nil, nil); err != nil {
		t.Fatalf("create alert: %v", err)
	}

	got, err := store.Preferences().Get(ctx, user.ID, alert.ID)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if got != nil {
		t.Fatal("preference should be absent before first interaction")
	}

	pref := &models.Preference{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		AlertID: alert.ID,
		IsRead:  true,
	}
	if err := store.Preferences().Upsert(ctx, pref); err != nil {
		t.Fatalf("upsert preference: %v", err)
	}

	// Second upsert with the same key overwrites in place.
	snooze := now.Add(time.Hour)
	again := &models.Preference{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		AlertID:      alert.ID,
		IsRead:       false,
		SnoozedUntil: &snooze,
	}
	if err := store.Preferences().Upsert(ctx, again); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err = store.Preferences().Get(ctx, user.ID, alert.ID)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if got == nil {
		t.Fatal("preference should exist")
	}
	if got.ID != pref.ID {
		t.Errorf("row id changed on upsert: %v, want %v", got.ID, pref.ID)
	}
	if got.IsRead {
		t.Error("is_read should have been overwritten to false")
	}
	if got.SnoozedUntil == nil {
		t.Fatal("snoozed_until should be set")
	}

	snoozed, err := store.Preferences().ListSnoozed(ctx, user.ID, now)
	if err != nil {
		t.Fatalf("list snoozed: %v", err)
	}
	if len(snoozed) != 1 {
		t.Errorf("snoozed = %d, want 1", len(snoozed))
	}

	// Past deadline drops out without rewriting the row.
	snoozed, err = store.Preferences().ListSnoozed(ctx, user.ID, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list snoozed after deadline: %v", err)
	}
	if len(snoozed) != 0 {
		t.Errorf("snoozed after deadline = %d, want 0", len(snoozed))
	}

	counts, err := store.Preferences().SnoozeCounts(ctx)
	if err != nil {
		t.Fatalf("snooze counts: %v", err)
	}
	if counts[alert.ID] != 1 {
		t.Errorf("snooze count = %d, want 1", counts[alert.ID])
	}
}
