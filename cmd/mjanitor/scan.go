package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fhinkel/music-janitor-core/internal/api"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directories...]",
	Short: "Scan directories for audio files and add them to the active profile's catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logging.Info("scanning %d director%s", len(args), plural(len(args), "y", "ies"))

	sessionID, err := app.StartScan(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("starting scan: %w", err)
	}

	for {
		status, ok := app.ScanStatusOf(sessionID)
		if !ok {
			return fmt.Errorf("lost track of scan session %s", sessionID)
		}
		switch status.State {
		case api.ScanStateCompleted:
			logging.Success("scan complete: %d files discovered, %d skipped",
				status.Result.FilesDiscovered, status.Result.FilesSkipped)
			if len(status.Result.Errors) > 0 {
				logging.Warn("%d files could not be processed", len(status.Result.Errors))
			}
			return nil
		case api.ScanStateError:
			return fmt.Errorf("scan failed: %s", status.Err)
		case api.ScanStateCancelled:
			return fmt.Errorf("scan was cancelled")
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
