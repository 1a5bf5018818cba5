package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	alertsvc "github.com/good-yellow-bee/alerthub/internal/alerts"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show engagement analytics",
	Long: `Show the engagement rollup: total alerts, deliveries, reads,
per-alert snooze counts, and the per-title breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		service := alertsvc.NewService(store)
		analytics, err := service.Analytics(context.Background())
		if err != nil {
			return fmt.Errorf("compute analytics: %w", err)
		}

		if GetOutput() == "json" {
			data, _ := json.MarshalIndent(analytics, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Total alerts: %d\n", analytics.TotalAlerts)
		fmt.Printf("Delivered:    %d\n", analytics.Delivered)
		fmt.Printf("Read:         %d\n", analytics.Read)
		if len(analytics.SnoozedPerAlert) > 0 {
			fmt.Println("\nSnoozes per alert:")
			for alertID, n := range analytics.SnoozedPerAlert {
				fmt.Printf("  %-36s  %d\n", alertID, n)
			}
		}
		if len(analytics.SeverityBreakdown) > 0 {
			fmt.Println("\nBreakdown:")
			for title, n := range analytics.SeverityBreakdown {
				fmt.Printf("  %-40s  %d\n", truncate(title, 40), n)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
