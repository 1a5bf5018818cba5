package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	alertsvc "github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

var (
	alertTitle      string
	alertMessage    string
	alertSeverity   string
	alertDelivery   string
	alertVisibility string
	alertOrgID      string
	alertTeamID     string
	alertUserID     string
	alertStart      string
	alertExpiry     string
	alertFrequency  int
	alertShowAll    bool
)

// alertCmd represents the alert command group
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Alert management commands",
	Long: `Commands for broadcasting and managing alerts.

Alerts are visible to their audience while the start/expiry window is
open. Audience scope is set at creation via --visibility plus the
matching scope id flag.

Examples:
  # Broadcast to a whole organization
  alertctl alert create --title "Maintenance Window" --severity info \
    --visibility organization --org <org-id>

  # Target one team with a warning
  alertctl alert create --title "Quarter Close" --severity warning \
    --visibility team --team <team-id>

  # List live alerts
  alertctl alert list

  # Retire an alert
  alertctl alert archive <alert-id>`,
}

var alertCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create and broadcast an alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertTitle == "" {
			return fmt.Errorf("--title is required")
		}

		now := time.Now().UTC()
		start, expiry := now, now.Add(24*time.Hour)
		var err error
		if alertStart != "" {
			if start, err = time.Parse(time.RFC3339, alertStart); err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
		}
		if alertExpiry != "" {
			if expiry, err = time.Parse(time.RFC3339, alertExpiry); err != nil {
				return fmt.Errorf("parse --expiry: %w", err)
			}
		}
		if !expiry.After(start) {
			return fmt.Errorf("--expiry must be after --start")
		}

		severity := models.Severity(alertSeverity)
		if !severity.Valid() {
			return fmt.Errorf("invalid --severity %q (info, warning, critical)", alertSeverity)
		}
		delivery := models.DeliveryType(alertDelivery)
		if !delivery.Valid() {
			return fmt.Errorf("invalid --delivery %q (in_app, email, sms)", alertDelivery)
		}
		visibility := models.Visibility(alertVisibility)
		if !visibility.Valid() {
			return fmt.Errorf("invalid --visibility %q (organization, team, user)", alertVisibility)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		service := alertsvc.NewService(store)
		alert, err := service.Create(context.Background(), alertsvc.CreateInput{
			Title:             alertTitle,
			Message:           alertMessage,
			Severity:          severity,
			DeliveryType:      delivery,
			ReminderFrequency: alertFrequency,
			StartTime:         start,
			ExpiryTime:        expiry,
			Visibility:        visibility,
			OrganizationID:    alertOrgID,
			TeamID:            alertTeamID,
			UserID:            alertUserID,
		})
		if err != nil {
			return fmt.Errorf("create alert: %w", err)
		}

		fmt.Printf("Created alert %q (%s)\n", alert.Title, alert.ID)
		fmt.Printf("  severity:   %s\n", alert.Severity)
		fmt.Printf("  visibility: %s\n", alert.Visibility)
		fmt.Printf("  window:     %s -> %s\n",
			alert.StartTime.Format(time.RFC3339), alert.ExpiryTime.Format(time.RFC3339))
		return nil
	},
}

var alertListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts",
	Long: `List non-archived alerts. With --all, archived alerts are
included too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		var (
			alerts []*models.Alert
			lerr   error
		)
		if alertShowAll {
			alerts, lerr = store.Alerts().ListAll(ctx)
		} else {
			alerts, lerr = store.Alerts().List(ctx, storage.AlertFilter{})
		}
		if lerr != nil {
			return fmt.Errorf("list alerts: %w", lerr)
		}
		if len(alerts) == 0 {
			fmt.Println("No alerts found.")
			return nil
		}

		now := time.Now().UTC()
		fmt.Printf("\n%-36s  %-30s  %-8s  %-12s  %s\n",
			"ID", "TITLE", "SEVERITY", "VISIBILITY", "STATE")
		fmt.Println(strings.Repeat("-", 104))
		for _, a := range alerts {
			state := "inactive"
			switch {
			case a.Archived:
				state = "archived"
			case a.ActiveAt(now):
				state = "live"
			case a.IsActive && a.StartTime.After(now):
				state = "scheduled"
			case a.IsActive:
				state = "expired"
			}
			fmt.Printf("%-36s  %-30s  %-8s  %-12s  %s\n",
				a.ID, truncate(a.Title, 30), a.Severity, a.Visibility, state)
		}
		fmt.Printf("\nTotal: %d alert(s)\n", len(alerts))
		return nil
	},
}

var alertArchiveCmd = &cobra.Command{
	Use:   "archive <alert-id>",
	Short: "Archive an alert",
	Long: `Archive an alert, removing it from every listing, inbox, and
reminder pass. Archived alerts still count toward analytics totals.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		service := alertsvc.NewService(store)
		if err := service.Archive(context.Background(), args[0]); err != nil {
			return fmt.Errorf("archive alert: %w", err)
		}
		fmt.Printf("Archived alert %s\n", args[0])
		return nil
	},
}

func init() {
	alertCreateCmd.Flags().StringVar(&alertTitle, "title", "", "alert title")
	alertCreateCmd.Flags().StringVar(&alertMessage, "message", "", "alert body")
	alertCreateCmd.Flags().StringVar(&alertSeverity, "severity", "info", "severity (info, warning, critical)")
	alertCreateCmd.Flags().StringVar(&alertDelivery, "delivery", "in_app", "delivery type (in_app, email, sms)")
	alertCreateCmd.Flags().StringVar(&alertVisibility, "visibility", "organization", "visibility (organization, team, user)")
	alertCreateCmd.Flags().StringVar(&alertOrgID, "org", "", "organization id (organization visibility)")
	alertCreateCmd.Flags().StringVar(&alertTeamID, "team", "", "team id (team visibility)")
	alertCreateCmd.Flags().StringVar(&alertUserID, "user", "", "user id (user visibility)")
	alertCreateCmd.Flags().StringVar(&alertStart, "start", "", "window start, RFC3339 (default: now)")
	alertCreateCmd.Flags().StringVar(&alertExpiry, "expiry", "", "window expiry, RFC3339 (default: start+24h)")
	alertCreateCmd.Flags().IntVar(&alertFrequency, "frequency", 0, "reminder frequency hours (default: 2)")
	alertListCmd.Flags().BoolVar(&alertShowAll, "all", false, "include archived alerts")

	alertCmd.AddCommand(alertCreateCmd)
	alertCmd.AddCommand(alertListCmd)
	alertCmd.AddCommand(alertArchiveCmd)
	rootCmd.AddCommand(alertCmd)
}
