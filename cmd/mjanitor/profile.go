package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fhinkel/music-janitor-core/internal/logging"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named catalog profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known profile",
	RunE:  runProfileList,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <id> <database-path>",
	Short: "Create a new profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileCreate,
}

var profileDuplicateCmd = &cobra.Command{
	Use:   "duplicate <source-id> <new-id>",
	Short: "Copy an existing profile's configuration under a new id",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileDuplicate,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile (the active profile cannot be deleted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var profileActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Switch the active profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileActivate,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileDuplicateCmd, profileDeleteCmd, profileActivateCmd)

	profileCreateCmd.Flags().String("name", "", "display name (defaults to the id)")
	profileCreateCmd.Flags().String("description", "", "description")
	profileDuplicateCmd.Flags().String("name", "", "display name for the new profile (defaults to the new id)")
}

func runProfileList(cmd *cobra.Command, args []string) error {
	active, _ := app.ActiveProfile()
	for _, p := range app.ListProfiles() {
		marker := "  "
		if active != nil && p.ID == active.ID {
			marker = "* "
		}
		fmt.Printf("%s%s  %s  (%s)\n", marker, p.ID, p.Name, p.DatabasePath)
	}
	return nil
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	id, dbPath := args[0], args[1]
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = id
	}
	description, _ := cmd.Flags().GetString("description")

	p, err := app.CreateProfile(id, name, description, dbPath, nil)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	logging.Success("created profile %q at %s", p.ID, p.DatabasePath)
	return nil
}

func runProfileDuplicate(cmd *cobra.Command, args []string) error {
	sourceID, newID := args[0], args[1]
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = newID
	}
	p, err := app.DuplicateProfile(sourceID, newID, name)
	if err != nil {
		return fmt.Errorf("duplicating profile: %w", err)
	}
	logging.Success("created profile %q from %q", p.ID, sourceID)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	if err := app.DeleteProfile(args[0]); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	logging.Success("deleted profile %q", args[0])
	return nil
}

func runProfileActivate(cmd *cobra.Command, args []string) error {
	if err := app.ActivateProfile(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("activating profile: %w", err)
	}
	logging.Success("activated profile %q", args[0])
	return nil
}
