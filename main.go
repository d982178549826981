package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"volmap/config"
	"volmap/dataset"
	"volmap/models"
	"volmap/utils/logger"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "volmap",
	Short: "Browse volunteer organizations as cards or on a map",
	Long: `volmap loads a CSV of volunteer organizations and serves a page to filter
them by name, description, region, county and focus area, view the matches as
cards or map pins, and download the filtered rows.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logger.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (or VOLMAP_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, exportCmd, mirrorCmd)
}

// loadTable reads the configured data file. Failure is fatal for every command.
func loadTable() (*models.Table, error) {
	loader := dataset.NewLoader(cfg.DataPath)
	table, err := loader.Load()
	if err != nil {
		log.Error("Failed to load organizations", zap.String("path", cfg.DataPath), zap.Error(err))
		return nil, err
	}
	log.Info("Loaded organizations", zap.String("path", loader.Path()), zap.Int("records", table.Len()))
	return table, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
