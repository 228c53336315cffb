// Command catalog parses exercise catalog files offline and imports them into
// the library database.
//
// Usage:
//
//	catalog parse exercises.txt --format yaml
//	cat exercises.txt | catalog parse - --strict
//	catalog import exercises.txt --importer 65f0c0ffee0000000000abcd
package main

import (
	"alcyxob/fitness-catalog/internal/config"
	"alcyxob/fitness-catalog/internal/logging"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errRejectedLines = errors.New("catalog has rejected lines")

// cli holds state shared by subcommands. Fields are populated by the root
// command's PersistentPreRunE.
type cli struct {
	configDir string
	logLevel  string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:           "catalog",
		Short:         "Parse and import exercise catalogs",
		Long:          `Turns "Name – modality | pattern | muscles | equipment | difficulty | prescription" lines into exercise records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(app.configDir)
			if err != nil {
				return err
			}
			if app.logLevel != "" {
				cfg.Log.Level = app.logLevel
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&app.configDir, "config", ".", "Directory containing config.yaml")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(newParseCmd(app), newImportCmd(app))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
