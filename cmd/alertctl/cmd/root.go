// Package cmd contains the CLI commands for alertctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/alerthub/internal/storage"
)

var (
	// Used for flags
	verbose bool
	output  string
	dbPath  string
)

// defaultDBPath is the default database path, can be overridden via ALERTHUB_DB_PATH env var
var defaultDBPath = "data/alerthub.db"

func init() {
	if envPath := os.Getenv("ALERTHUB_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alertctl",
	Short: "AlertHub administration tool",
	Long: `alertctl manages an AlertHub database directly, without going
through the HTTP API. It is intended for operators: bootstrapping the
directory, broadcasting alerts, and inspecting engagement.

Examples:
  # Create an organization and a team
  alertctl directory create-org --name "Acme Corp"
  alertctl directory create-team --name Finance --org <org-id>

  # Broadcast an alert to a team
  alertctl alert create --title "Quarter Close" --severity warning \
    --visibility team --team <team-id>

  # Run one reminder pass and show engagement
  alertctl remind
  alertctl analytics`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "path to the alerthub database")
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

// openStore opens the database and applies migrations.
func openStore() (*storage.SQLiteStorage, error) {
	store := storage.NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database at %s: %w", dbPath, err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-2] + ".."
}
