// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Catalog struct {
	BaseURL           string  `yaml:"base_url"`
	Lang              string  `yaml:"lang"`
	PageSize          int     `yaml:"page_size"`
	LevelMin          int     `yaml:"level_min"`
	LevelMax          int     `yaml:"level_max"`
	ExcludeTypeIDs    []int   `yaml:"exclude_type_ids"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryBackoffMS    int     `yaml:"retry_backoff_ms"`
}

type Paths struct {
	JobsFile    string `yaml:"jobs_file"`
	ResultsFile string `yaml:"results_file"`
}

type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Catalog   Catalog `yaml:"catalog"`
	Paths     Paths   `yaml:"paths"`
	Pricebook bool    `yaml:"pricebook"`
	Log       Log     `yaml:"log"`
}

// Default is the configuration Ensure writes on first run.
func Default() Config {
	var cfg Config

	cfg.Catalog.BaseURL = "https://api.dofusdb.fr"
	cfg.Catalog.Lang = "en"
	cfg.Catalog.PageSize = 50
	cfg.Catalog.LevelMin = 0
	cfg.Catalog.LevelMax = 200
	cfg.Catalog.ExcludeTypeIDs = []int{203}
	cfg.Catalog.TimeoutSeconds = 20
	cfg.Catalog.RequestsPerSecond = 4
	cfg.Catalog.Burst = 2
	cfg.Catalog.MaxRetries = 3
	cfg.Catalog.RetryBackoffMS = 500

	cfg.Paths.JobsFile = "jobs.json"
	cfg.Paths.ResultsFile = "results.json"
	cfg.Pricebook = true

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stdout"
	cfg.Log.FilePath = "logs/craftdex.log"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28

	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
