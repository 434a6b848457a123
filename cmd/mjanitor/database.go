package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Report the active profile's catalog location and health",
	RunE:  runDatabase,
}

func init() {
	rootCmd.AddCommand(databaseCmd)
}

func runDatabase(cmd *cobra.Command, args []string) error {
	info, err := app.DatabaseInfoOf(cmd.Context())
	if err != nil {
		return fmt.Errorf("inspecting database: %w", err)
	}

	fmt.Printf("profile:  %s\n", info.ProfileID)
	fmt.Printf("path:     %s\n", info.DatabasePath)
	fmt.Printf("tracks:   %d\n", info.TrackCount)
	if info.Healthy {
		fmt.Println("status:   healthy")
	} else {
		fmt.Printf("status:   unhealthy (%s)\n", info.Err)
	}
	return nil
}
