package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patham9/YAN/internal/config"
	"github.com/patham9/YAN/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "yan",
	Short: "A small non-axiomatic reasoner",
	Long:  "YAN keeps a bounded memory of beliefs and goals, learns temporal implications between events and logs what it admits.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("YAN_CONFIG"), "path to a TOML config file (env YAN_CONFIG)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// journalPath resolves the journal database: YAN_JOURNAL, then the config,
// then the default location.
func journalPath(cfg config.Config) (string, error) {
	if p := os.Getenv("YAN_JOURNAL"); p != "" {
		return p, nil
	}
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path, nil
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return p, nil
}
