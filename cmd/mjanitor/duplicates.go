package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Scan the catalog for duplicate groups using the active profile's tuning",
	RunE:  runFind,
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List or inspect the most recently found duplicate groups",
	RunE:  runDuplicatesList,
}

var duplicatesShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show every member of one duplicate group",
	Args:  cobra.ExactArgs(1),
	RunE:  runDuplicatesShow,
}

func init() {
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(duplicatesCmd)
	duplicatesCmd.AddCommand(duplicatesShowCmd)

	duplicatesCmd.Flags().Int("page", 0, "page number")
	duplicatesCmd.Flags().Int("size", 20, "page size")
}

func activeFuzzyConfig() (fuzzy.Config, error) {
	return app.GetFuzzyConfig()
}

func runFind(cmd *cobra.Command, args []string) error {
	profileID := viper.GetString("profile")
	cfg, err := activeFuzzyConfig()
	if err != nil {
		return err
	}

	session, err := app.Dedupe.Start(cmd.Context(), profileID, cfg, dedupe.DefaultFingerprintThreshold)
	if err != nil {
		return fmt.Errorf("starting duplicate scan: %w", err)
	}

	groupsFound := 0
	for range session.Groups() {
		groupsFound++
	}
	if _, err := session.Wait(); err != nil {
		return fmt.Errorf("duplicate scan failed: %w", err)
	}

	logging.Success("found %d duplicate group(s)", groupsFound)
	if groupsFound > 0 {
		logging.Info("run 'mjanitor duplicates' to list them, or 'mjanitor resolve preview' to see the auto-resolve plan")
	}
	return nil
}

func runDuplicatesList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	cfg, err := activeFuzzyConfig()
	if err != nil {
		return err
	}

	result, err := app.ListDuplicateGroups(cmd.Context(), cfg, dedupe.DefaultFingerprintThreshold, page, size)
	if err != nil {
		return fmt.Errorf("listing duplicate groups: %w", err)
	}
	if result.Total == 0 {
		logging.Info("no duplicate groups cached; run 'mjanitor find' first")
		return nil
	}

	for _, g := range result.Items {
		fmt.Printf("group %d: %q by %q (%d files)\n", g.GroupID, g.RepresentativeTitle, g.RepresentativeArtist, g.FileCount)
	}
	fmt.Printf("\npage %d of %d total group(s)\n", page, result.Total)
	return nil
}

func runDuplicatesShow(cmd *cobra.Command, args []string) error {
	groupID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid group id %q: %w", args[0], err)
	}

	cfg, err := activeFuzzyConfig()
	if err != nil {
		return err
	}

	group, found, err := app.GetDuplicateGroup(cmd.Context(), cfg, dedupe.DefaultFingerprintThreshold, groupID)
	if err != nil {
		return fmt.Errorf("looking up group %d: %w", groupID, err)
	}
	if !found {
		return fmt.Errorf("no cached duplicate group with id %d", groupID)
	}

	for i, f := range group.Files {
		marker := "  "
		if i == 0 {
			marker = "* "
		}
		fmt.Printf("%s[%d] %s\n", marker, f.File.ID, f.File.FilePath)
		fmt.Printf("     %s - %s (%s)\n", f.File.Artist, f.File.Title, f.File.FormattedDuration)
		if f.Similarity != nil {
			fmt.Printf("     similarity: %.1f%%\n", *f.Similarity*100)
		}
	}
	return nil
}
