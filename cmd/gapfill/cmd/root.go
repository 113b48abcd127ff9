// Package cmd provides CLI command implementations
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/gapfill/pkg/config"
	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/reader/targets"
)

var (
	// Persistent flags
	configFile string
	logLevel   string
	modsCSV    string

	cfg *config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "gapfill",
	Short: "gapfill - Targeted feature reconstruction",
	Long: `gapfill reconstructs chromatographic peaks for a list of expected
compounds from a time-ordered LC-MS scan list.

Targets that describe the same analyte are merged into clusters, then every
cluster is searched for its best peak inside its m/z, retention time and
optional ion mobility window. Results are written to a SQLite database.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(clustersCmd)
	rootCmd.AddCommand(validateCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&modsCSV, "mods", "", "Extra modification CSV (name,massshift) for peptide targets")
}

func setup(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if configFile == "" {
		cfg = config.Default()
		return nil
	}
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	log.WithField("path", configFile).Debug("loaded configuration")
	return nil
}

// loadModDatabase returns the default modifications plus any from --mods.
func loadModDatabase() (*core.ModDatabase, error) {
	modDB := core.DefaultModDatabase()
	if modsCSV == "" {
		return modDB, nil
	}

	f, err := os.Open(modsCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to open modification CSV: %w", err)
	}
	defer f.Close()

	if err := modDB.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("failed to load modification CSV: %w", err)
	}
	log.WithFields(logrus.Fields{"path": modsCSV, "mods": modDB.Len()}).Debug("loaded modifications")
	return modDB, nil
}

// loadTargets reads and validates a target list.
func loadTargets(path string) ([]core.Target, error) {
	modDB, err := loadModDatabase()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close()

	list, err := targets.Load(f, modDB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", path, targets.ErrNoTargets)
	}
	return list, nil
}
