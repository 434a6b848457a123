package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fhinkel/music-janitor-core/internal/api"
	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/dedupe"
	"github.com/fhinkel/music-janitor-core/internal/logging"
	"github.com/fhinkel/music-janitor-core/internal/profile"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile string
	app     *api.API

	rootCmd = &cobra.Command{
		Use:   "mjanitor",
		Short: "A personal music-library deduplication engine",
		Long: `mjanitor scans a music collection, finds duplicate tracks by fuzzy
metadata matching and audio fingerprinting, and helps you resolve them —
automatically by a ranked tie-breaker chain, or interactively one group
at a time.`,
		Version:           Version,
		PersistentPreRunE: initApp,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mjanitor.yaml)")
	rootCmd.PersistentFlags().String("profiles", "profiles.toml", "profile registry file")
	rootCmd.PersistentFlags().String("profile", "default", "profile id to operate against")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	viper.BindPFlag("profiles", rootCmd.PersistentFlags().Lookup("profiles"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("mjanitor")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MJANITOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		logging.Info("using config file: %s", viper.ConfigFileUsed())
	}
}

// initApp constructs the shared api.API once flags and config are
// resolved, and activates the requested profile (creating a default one
// on first run so a brand-new checkout works without any setup command).
func initApp(cmd *cobra.Command, args []string) error {
	logging.SetVerbose(viper.GetBool("verbose"))
	logging.SetQuiet(viper.GetBool("quiet"))

	profilesPath := viper.GetString("profiles")
	profileID := viper.GetString("profile")

	ctrl := dedupe.NewController(&storeSource{})
	mgr, err := profile.NewManager(profilesPath, ctrl)
	if err != nil {
		return fmt.Errorf("opening profile registry %s: %w", profilesPath, err)
	}
	storeSourceMgr = mgr

	if _, ok := mgr.Get(profileID); !ok {
		dbPath := filepath.Join(filepath.Dir(profilesPath), profileID+".db")
		if _, err := mgr.Create(profileID, profileID, "", dbPath, nil); err != nil {
			return fmt.Errorf("creating profile %s: %w", profileID, err)
		}
		logging.Info("created new profile %q at %s", profileID, dbPath)
	}
	if err := mgr.Activate(cmd.Context(), profileID); err != nil {
		return fmt.Errorf("activating profile %s: %w", profileID, err)
	}

	app = api.New(mgr, ctrl)
	return nil
}

// storeSource adapts the active profile's *catalog.Store to
// dedupe.Source. It is wired to mgr only after initApp constructs the
// profile manager, mirroring the same construction-order loop the api
// package's own tests resolve with a testSource.
type storeSource struct{}

var storeSourceMgr *profile.Manager

func (storeSource) ListAll(ctx context.Context) ([]*catalog.Track, error) {
	store, ok := storeSourceMgr.Store()
	if !ok {
		return nil, fmt.Errorf("no active profile store")
	}
	return store.ListAll(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
