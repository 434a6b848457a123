package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fhinkel/music-janitor-core/internal/fuzzy"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or tune the active profile's matcher and scan filters",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active profile's fuzzy-matching config and enabled file types",
	RunE:  runConfigShow,
}

var configPresetCmd = &cobra.Command{
	Use:   "preset <strict|balanced|lenient>",
	Short: "Apply a built-in fuzzy-matching preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigPreset,
}

var configFileTypesCmd = &cobra.Command{
	Use:   "file-types [ext...]",
	Short: "Show or set the enabled file-type filter (no args shows the current list)",
	RunE:  runConfigFileTypes,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPresetCmd, configFileTypesCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := app.GetFuzzyConfig()
	if err != nil {
		return err
	}
	types, err := app.GetFileTypes()
	if err != nil {
		return err
	}
	fmt.Printf("title threshold:    %.0f\n", cfg.TitleThreshold)
	fmt.Printf("artist threshold:   %.0f\n", cfg.ArtistThreshold)
	fmt.Printf("album threshold:    %.0f\n", cfg.AlbumThreshold)
	fmt.Printf("duration tolerance: %.0fs / %.0f%%\n", cfg.DurationTolSec, cfg.DurationTolPct)
	fmt.Printf("bitrate tolerance:  %.0f kbps\n", cfg.BitrateTolKbps)
	fmt.Printf("min fields to match: %d\n", cfg.MinFieldsToMatch)
	fmt.Printf("file types:         %s\n", strings.Join(types, ", "))
	return nil
}

func runConfigPreset(cmd *cobra.Command, args []string) error {
	preset := fuzzy.Preset(args[0])
	cfg, err := app.ApplyFuzzyPreset(preset)
	if err != nil {
		return fmt.Errorf("applying preset %q: %w", args[0], err)
	}
	logging.Success("applied %q preset (title threshold %.0f)", preset, cfg.TitleThreshold)
	return nil
}

func runConfigFileTypes(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		types, err := app.GetFileTypes()
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(types, ", "))
		return nil
	}
	if err := app.SetFileTypes(args); err != nil {
		return fmt.Errorf("setting file types: %w", err)
	}
	logging.Success("enabled file types: %s", strings.Join(args, ", "))
	return nil
}
