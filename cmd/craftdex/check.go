package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"craftdex-engine/internal/config"
	"craftdex-engine/internal/jobs"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and job list without querying the catalog",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runCheck validates whatever is on disk. Unlike the root command it never
// creates files, so a missing config is reported instead of bootstrapped.
func runCheck(cmd *cobra.Command, args []string) error {
	dir := resolveDataDir()

	path := flagConfig
	if path == "" {
		path = filepath.Join(dir, "config.yml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	norm, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
	}
	if !res.OK() {
		return fmt.Errorf("invalid config %s:\n- %s", path, strings.Join(res.Errors, "\n- "))
	}

	jobsPath := filepath.Join(dir, norm.Paths.JobsFile)
	list, err := jobs.Load(jobsPath)
	if err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	filters := 0
	for _, j := range list {
		filters += len(j.Filters)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d jobs, %d filters, catalog %s\n",
		len(list), filters, norm.Catalog.BaseURL)
	return nil
}
