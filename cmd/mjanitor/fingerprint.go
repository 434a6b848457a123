package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fhinkel/music-janitor-core/internal/logging"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Generate Chromaprint fingerprints for the active profile's catalog",
	RunE:  runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	sessionID, err := app.StartFingerprintGeneration(cmd.Context())
	if err != nil {
		return fmt.Errorf("starting fingerprint generation: %w", err)
	}

	var bar *progressbar.ProgressBar
	for {
		status, ok := app.FingerprintStatusOf(sessionID)
		if !ok {
			return fmt.Errorf("lost track of fingerprint session %s", sessionID)
		}
		if status.Progress.Total > 0 {
			if bar == nil {
				bar = progressbar.NewOptions(status.Progress.Total,
					progressbar.OptionSetDescription("Fingerprinting"),
					progressbar.OptionShowCount(),
					progressbar.OptionThrottle(200*time.Millisecond),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Set(status.Progress.Completed)
		}
		if status.Err != "" {
			if bar != nil {
				bar.Clear()
			}
			return fmt.Errorf("fingerprint generation failed: %s", status.Err)
		}
		if status.Result != nil {
			if bar != nil {
				bar.Finish()
			}
			logging.Success("fingerprinted %d file(s), skipped %d", status.Result.Completed, status.Result.Skipped)
			if len(status.Result.Errors) > 0 {
				logging.Warn("%d file(s) could not be fingerprinted", len(status.Result.Errors))
			}
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
