package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"craftdex-engine/internal/config"
	"craftdex-engine/internal/logging"
	"craftdex-engine/internal/run"
)

var rootCmd = &cobra.Command{
	Use:   "craftdex",
	Short: "Extract craftable items per job and seed editable price books",
	Long: `craftdex reads a job list, pulls every craftable item for each job from
the item catalog and writes results.json plus three price book files that
a follow-up pricing pass can fill in.`,
	RunE: runRoot,
}

var (
	flagDataDir string
	flagConfig  string
	flagJobs    string
	flagOut     string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default $CRAFTDEX_DATA_DIR, then ./data)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <data-dir>/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&flagJobs, "jobs", "", "job list file (default from config)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "results file (default from config)")
}

// resolveDataDir picks the data directory: flag, then environment, then ./data.
func resolveDataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	if env := os.Getenv("CRAFTDEX_DATA_DIR"); env != "" {
		return env
	}
	return "data"
}

// loadConfig bootstraps the config file if needed, loads it and validates.
// Warnings are returned so the caller can log them once a logger exists.
func loadConfig(dir string) (config.Config, []string, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.Ensure(dir)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config %s: %w", path, err)
	}

	norm, res := config.NormalizeAndValidate(cfg)
	if !res.OK() {
		return config.Config{}, nil, fmt.Errorf("invalid config %s:\n- %s", path, strings.Join(res.Errors, "\n- "))
	}
	return norm, res.Warnings, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	dir := resolveDataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}

	cfg, warnings, err := loadConfig(dir)
	if err != nil {
		return err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warnf("config: %s", w)
	}

	paths := run.DefaultPaths(dir, cfg.Paths)
	if flagJobs != "" {
		paths.Jobs = flagJobs
	}
	if flagOut != "" {
		paths.Results = flagOut
	}

	_, err = run.New(cfg, paths, log).Run(cmd.Context())
	return err
}
