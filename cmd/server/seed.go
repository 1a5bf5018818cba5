package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a demo directory and sample alerts",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	existing, err := store.Organizations().GetByName(ctx, "Acme Corp")
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("database already seeded (organization %q exists)", existing.Name)
	}

	org := models.NewOrganization("Acme Corp")
	org.ID = uuid.New().String()
	if err := store.Organizations().Create(ctx, org); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}

	teams := make(map[string]*models.Team)
	for _, name := range []string{"Engineering", "Marketing", "Finance"} {
		team := models.NewTeam(name, org.ID)
		team.ID = uuid.New().String()
		if err := store.Teams().Create(ctx, team); err != nil {
			return fmt.Errorf("create team %s: %w", name, err)
		}
		teams[name] = team
	}

	users := make(map[string]*models.User)
	for name, teamName := range map[string]string{
		"Alice": "Engineering",
		"Carol": "Marketing",
		"Eve":   "Finance",
	} {
		user := models.NewUser(name, teams[teamName].ID)
		user.ID = uuid.New().String()
		if err := store.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", name, err)
		}
		users[name] = user
	}

	service := alerts.NewService(store)
	now := time.Now().UTC()

	seedAlerts := []alerts.CreateInput{
		{
			Title:          "Org-wide Alert",
			Message:        "This is for all teams and users.",
			Severity:       models.SeverityInfo,
			DeliveryType:   models.DeliveryInApp,
			StartTime:      now,
			ExpiryTime:     now.Add(24 * time.Hour),
			Visibility:     models.VisibilityOrganization,
			OrganizationID: org.ID,
		},
		{
			Title:        "Finance Only Alert",
			Message:      "This is for Finance team only.",
			Severity:     models.SeverityWarning,
			DeliveryType: models.DeliveryInApp,
			StartTime:    now,
			ExpiryTime:   now.Add(24 * time.Hour),
			Visibility:   models.VisibilityTeam,
			TeamID:       teams["Finance"].ID,
		},
		{
			Title:        "Eve Only Alert",
			Message:      "This is for Eve only.",
			Severity:     models.SeverityCritical,
			DeliveryType: models.DeliveryInApp,
			StartTime:    now,
			ExpiryTime:   now.Add(24 * time.Hour),
			Visibility:   models.VisibilityUser,
			UserID:       users["Eve"].ID,
		},
	}
	for _, in := range seedAlerts {
		alert, err := service.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create alert %q: %w", in.Title, err)
		}
		log.Printf("seeded alert %q (%s)", alert.Title, alert.ID)
	}

	log.Printf("seed complete: 1 organization, %d teams, %d users, %d alerts",
		len(teams), len(users), len(seedAlerts))
	return nil
}
