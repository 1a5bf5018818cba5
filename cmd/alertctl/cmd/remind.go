package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/alerthub/internal/audience"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/notifier"
	"github.com/good-yellow-bee/alerthub/internal/reminder"
)

var remindPolicy string

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run one reminder pass",
	Long: `Run a single synchronous reminder pass over all live alerts,
delivering to each alert's current audience. Snoozed users are skipped.

With --policy suppress_read, users who have already read an alert are
skipped as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var policy reminder.Policy
		switch remindPolicy {
		case "always":
			policy = reminder.AlwaysRemind{}
		case "suppress_read":
			policy = reminder.SuppressRead{}
		default:
			return fmt.Errorf("invalid --policy %q (always, suppress_read)", remindPolicy)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		dispatcher := notifier.NewDispatcher()
		dispatcher.Register(models.DeliveryInApp, notifier.NewInAppChannel(store.Deliveries()))
		defer dispatcher.Close()

		engine := reminder.NewEngine(store, dispatcher, audience.NewResolver(store), policy, time.Hour)
		stats, err := engine.RunOnce(context.Background())
		if err != nil {
			return fmt.Errorf("reminder pass: %w", err)
		}

		fmt.Printf("Pass complete: %d alert(s), %d delivered, %d skipped, %d error(s)\n",
			stats.Alerts, stats.Deliveries, stats.Skipped, stats.Errors)
		return nil
	},
}

func init() {
	remindCmd.Flags().StringVar(&remindPolicy, "policy", "always", "reminder policy (always, suppress_read)")
	rootCmd.AddCommand(remindCmd)
}
