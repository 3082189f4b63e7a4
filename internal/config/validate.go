package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg plus everything
// wrong or suspicious about it. Callers decide whether warnings matter.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	// ---- Normalization ----

	out.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(out.Catalog.BaseURL), "/")
	out.Catalog.Lang = strings.ToLower(strings.TrimSpace(out.Catalog.Lang))
	if out.Catalog.Lang == "" {
		out.Catalog.Lang = "en"
	}
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))
	out.Log.Output = strings.ToLower(strings.TrimSpace(out.Log.Output))

	// ---- Validation rules ----

	if out.Catalog.BaseURL == "" {
		res.addErr("catalog.base_url is required")
	} else if u, err := url.Parse(out.Catalog.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		res.addErr("catalog.base_url must be an http(s) URL, got %q", out.Catalog.BaseURL)
	}

	if out.Catalog.PageSize <= 0 {
		res.addErr("catalog.page_size must be > 0")
	} else if out.Catalog.PageSize > 100 {
		res.addWarn("catalog.page_size is very high (%d); the catalog may clamp it.", out.Catalog.PageSize)
	}

	if out.Catalog.LevelMin < 0 {
		res.addErr("catalog.level_min must be >= 0")
	}
	if out.Catalog.LevelMax < out.Catalog.LevelMin {
		res.addErr("catalog.level_max must be >= catalog.level_min")
	}

	if out.Catalog.TimeoutSeconds <= 0 {
		res.addErr("catalog.timeout_seconds must be > 0")
	}
	if out.Catalog.RequestsPerSecond <= 0 {
		res.addErr("catalog.requests_per_second must be > 0")
	} else if out.Catalog.RequestsPerSecond > 10 {
		res.addWarn("catalog.requests_per_second is high (%.1f) and may trip rate limits.", out.Catalog.RequestsPerSecond)
	}
	if out.Catalog.Burst <= 0 {
		res.addErr("catalog.burst must be > 0")
	}

	if out.Catalog.MaxRetries < 0 {
		res.addErr("catalog.max_retries must be >= 0")
	}
	if out.Catalog.RetryBackoffMS <= 0 {
		res.addErr("catalog.retry_backoff_ms must be > 0")
	}

	if strings.TrimSpace(out.Paths.JobsFile) == "" {
		res.addErr("paths.jobs_file is required")
	}
	if strings.TrimSpace(out.Paths.ResultsFile) == "" {
		res.addErr("paths.results_file is required")
	}

	switch out.Log.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		res.addErr("log.level %q is not a known level", out.Log.Level)
	}
	switch out.Log.Format {
	case "text", "json":
	default:
		res.addErr("log.format must be text or json, got %q", out.Log.Format)
	}
	switch out.Log.Output {
	case "stdout", "stderr":
	case "file":
		if strings.TrimSpace(out.Log.FilePath) == "" {
			res.addErr("log.file_path is required when log.output=file")
		}
	default:
		res.addErr("log.output must be stdout, stderr or file, got %q", out.Log.Output)
	}

	return out, res
}
