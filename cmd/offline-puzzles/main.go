package main

import (
	"fmt"
	"os"

	appcfg "github.com/park285/offline-puzzles/internal/config"
	"github.com/park285/offline-puzzles/internal/msgcat"
	"github.com/park285/offline-puzzles/internal/obslog"
	"github.com/park285/offline-puzzles/internal/settings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	settingsPath string

	cfg     *appcfg.AppConfig
	catalog *msgcat.Catalog
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "offline-puzzles",
	Short: "Offline lichess puzzle trainer",
	Long: `offline-puzzles keeps a local copy of the lichess puzzle database,
stores trainer settings in a JSON file and serves a local bridge for the GUI shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := obslog.InitFromEnv(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = obslog.L()
		cfg = appcfg.Load()
		if settingsPath != "" {
			cfg.SettingsPath = settingsPath
		}
		c, err := msgcat.New(cfg.MessagesDir)
		if err != nil {
			return fmt.Errorf("load messages: %w", err)
		}
		catalog = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default $SETTINGS_PATH or settings.json)")
	rootCmd.AddCommand(serveCmd, settingsCmd, puzzlesCmd)
}

func openStore() *settings.Store {
	return settings.NewStore(cfg.SettingsPath, settings.WithStoreLogger(logger))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
