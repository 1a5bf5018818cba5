package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

var (
	dirName   string
	dirOrgID  string
	dirTeamID string
)

// directoryCmd represents the directory command group
var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Directory management commands",
	Long: `Commands for managing the organization, team, and user directory.

The directory determines alert audiences: organization alerts go to
every user in the organization, team alerts to the members of linked
teams, and user alerts to the linked users.

Examples:
  # Create an organization
  alertctl directory create-org --name "Acme Corp"

  # Create a team within it
  alertctl directory create-team --name Finance --org <org-id>

  # Create a user on that team
  alertctl directory create-user --name Eve --team <team-id>

  # List everything
  alertctl directory orgs
  alertctl directory teams
  alertctl directory users`,
}

var createOrgCmd = &cobra.Command{
	Use:   "create-org",
	Short: "Create an organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dirName == "" {
			return fmt.Errorf("--name is required")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		existing, err := store.Organizations().GetByName(ctx, dirName)
		if err != nil {
			return fmt.Errorf("check organization: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("organization %q already exists (%s)", dirName, existing.ID)
		}

		org := models.NewOrganization(dirName)
		org.ID = uuid.New().String()
		if err := store.Organizations().Create(ctx, org); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		fmt.Printf("Created organization %q (%s)\n", org.Name, org.ID)
		return nil
	},
}

var createTeamCmd = &cobra.Command{
	Use:   "create-team",
	Short: "Create a team within an organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dirName == "" || dirOrgID == "" {
			return fmt.Errorf("--name and --org are required")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		org, err := store.Organizations().GetByID(ctx, dirOrgID)
		if err != nil {
			return fmt.Errorf("look up organization: %w", err)
		}
		if org == nil {
			return fmt.Errorf("organization %s not found", dirOrgID)
		}

		team := models.NewTeam(dirName, org.ID)
		team.ID = uuid.New().String()
		if err := store.Teams().Create(ctx, team); err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		fmt.Printf("Created team %q (%s) in %q\n", team.Name, team.ID, org.Name)
		return nil
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user, optionally on a team",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dirName == "" {
			return fmt.Errorf("--name is required")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		if dirTeamID != "" {
			team, err := store.Teams().GetByID(ctx, dirTeamID)
			if err != nil {
				return fmt.Errorf("look up team: %w", err)
			}
			if team == nil {
				return fmt.Errorf("team %s not found", dirTeamID)
			}
		}

		user := models.NewUser(dirName, dirTeamID)
		user.ID = uuid.New().String()
		if err := store.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Printf("Created user %q (%s)\n", user.Name, user.ID)
		return nil
	},
}

var listOrgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		orgs, err := store.Organizations().List(context.Background())
		if err != nil {
			return fmt.Errorf("list organizations: %w", err)
		}
		if len(orgs) == 0 {
			fmt.Println("No organizations found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-30s  %s\n", "ID", "NAME", "CREATED")
		fmt.Println(strings.Repeat("-", 90))
		for _, o := range orgs {
			fmt.Printf("%-36s  %-30s  %s\n", o.ID, truncate(o.Name, 30), o.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("\nTotal: %d organization(s)\n", len(orgs))
		return nil
	},
}

var listTeamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		var (
			teams []*models.Team
			lerr  error
		)
		if dirOrgID != "" {
			teams, lerr = store.Teams().ListByOrganization(ctx, dirOrgID)
		} else {
			teams, lerr = store.Teams().List(ctx)
		}
		if lerr != nil {
			return fmt.Errorf("list teams: %w", lerr)
		}
		if len(teams) == 0 {
			fmt.Println("No teams found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-20s  %s\n", "ID", "NAME", "ORGANIZATION")
		fmt.Println(strings.Repeat("-", 96))
		for _, tm := range teams {
			fmt.Printf("%-36s  %-20s  %s\n", tm.ID, truncate(tm.Name, 20), tm.OrganizationID)
		}
		fmt.Printf("\nTotal: %d team(s)\n", len(teams))
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		var (
			users []*models.User
			lerr  error
		)
		if dirTeamID != "" {
			users, lerr = store.Users().ListByTeam(ctx, dirTeamID)
		} else {
			users, lerr = store.Users().List(ctx)
		}
		if lerr != nil {
			return fmt.Errorf("list users: %w", lerr)
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		fmt.Printf("\n%-36s  %-20s  %s\n", "ID", "NAME", "TEAM")
		fmt.Println(strings.Repeat("-", 96))
		for _, u := range users {
			team := u.TeamID
			if team == "" {
				team = "-"
			}
			fmt.Printf("%-36s  %-20s  %s\n", u.ID, truncate(u.Name, 20), team)
		}
		fmt.Printf("\nTotal: %d user(s)\n", len(users))
		return nil
	},
}

func init() {
	createOrgCmd.Flags().StringVar(&dirName, "name", "", "name")
	createTeamCmd.Flags().StringVar(&dirName, "name", "", "name")
	createTeamCmd.Flags().StringVar(&dirOrgID, "org", "", "organization id")
	createUserCmd.Flags().StringVar(&dirName, "name", "", "name")
	createUserCmd.Flags().StringVar(&dirTeamID, "team", "", "team id")
	listTeamsCmd.Flags().StringVar(&dirOrgID, "org", "", "filter by organization id")
	listUsersCmd.Flags().StringVar(&dirTeamID, "team", "", "filter by team id")

	directoryCmd.AddCommand(createOrgCmd)
	directoryCmd.AddCommand(createTeamCmd)
	directoryCmd.AddCommand(createUserCmd)
	directoryCmd.AddCommand(listOrgsCmd)
	directoryCmd.AddCommand(listTeamsCmd)
	directoryCmd.AddCommand(listUsersCmd)
	rootCmd.AddCommand(directoryCmd)
}
