package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/logging"
	"github.com/fhinkel/music-janitor-core/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Preview or apply the ranked tie-breaker auto-resolver over cached duplicate groups",
}

var resolvePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what the auto-resolver would delete, without deleting anything",
	RunE:  runResolvePreview,
}

var resolveExecuteCmd = &cobra.Command{
	Use:   "execute",
	Short: "Apply the auto-resolver's plan, deleting every losing file",
	RunE:  runResolveExecute,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.AddCommand(resolvePreviewCmd)
	resolveCmd.AddCommand(resolveExecuteCmd)

	for _, c := range []*cobra.Command{resolvePreviewCmd, resolveExecuteCmd} {
		c.Flags().Int("bitrate-tolerance-kbps", 0, "bitrate tie-break margin (0 = default)")
		c.Flags().String("preferred-dir", "", "directory whose members win ties (empty disables this step)")
	}
	resolveExecuteCmd.Flags().Int64Slice("exclude", nil, "file ids to exclude from deletion")
}

func resolveConfigFromFlags(cmd *cobra.Command) resolve.Config {
	tol, _ := cmd.Flags().GetInt("bitrate-tolerance-kbps")
	dir, _ := cmd.Flags().GetString("preferred-dir")
	return resolve.Config{BitrateTolKbps: tol, PreferredDir: dir}
}

func printPlan(plan resolve.Plan) {
	if len(plan.Resolutions) == 0 && len(plan.ManualReview) == 0 {
		logging.Info("nothing to resolve; run 'mjanitor find' first")
		return
	}
	for _, r := range plan.Resolutions {
		fmt.Printf("group %d: delete %s, keep %s (%s)\n", r.GroupID, r.FileToDelete, r.FileToKeep, r.Reason)
	}
	if len(plan.ManualReview) > 0 {
		logging.Warn("%d group(s) deferred to manual review", len(plan.ManualReview))
		for _, g := range plan.ManualReview {
			fmt.Printf("  manual review: group %d (%d members)\n", g.ID, len(g.Members))
		}
	}
}

func runResolvePreview(cmd *cobra.Command, args []string) error {
	cfg, err := activeFuzzyConfig()
	if err != nil {
		return err
	}
	plan, err := app.PreviewAutoResolve(cmd.Context(), cfg, dedupe.DefaultFingerprintThreshold, resolveConfigFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("previewing auto-resolve plan: %w", err)
	}
	printPlan(plan)
	return nil
}

func runResolveExecute(cmd *cobra.Command, args []string) error {
	cfg, err := activeFuzzyConfig()
	if err != nil {
		return err
	}
	exclude, _ := cmd.Flags().GetInt64Slice("exclude")

	result, err := app.ExecuteAutoResolve(cmd.Context(), cfg, dedupe.DefaultFingerprintThreshold, resolveConfigFromFlags(cmd), exclude)
	if err != nil {
		return fmt.Errorf("executing auto-resolve plan: %w", err)
	}

	logging.Success("deleted %d file(s)", result.Deleted)
	if len(result.Failed) > 0 {
		logging.Warn("%d deletion(s) failed", len(result.Failed))
		for _, e := range result.Failed {
			logging.Error("%v", e)
		}
	}
	return nil
}
