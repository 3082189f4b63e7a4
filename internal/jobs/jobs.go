// Package jobs loads and validates the craft job list that drives a run.
package jobs

import (
	"fmt"
	"strings"

	"craftdex-engine/internal/jsonio"
)

// Job names a profession and the catalog categories its items come from.
type Job struct {
	Name    string   `json:"name"`
	Filters []string `json:"filters"`
}

// ConfigError reports a job list that parsed but cannot drive a run.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid job list %s: %s", e.Path, e.Reason)
}

// Load reads the job list at path. Structural problems come back as
// *ConfigError; missing or unparseable files keep their jsonio types.
func Load(path string) ([]Job, error) {
	var list []Job
	if err := jsonio.Read(path, &list); err != nil {
		return nil, err
	}

	out, err := normalize(path, list)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(path string, list []Job) ([]Job, error) {
	if len(list) == 0 {
		return nil, &ConfigError{Path: path, Reason: "no jobs defined"}
	}

	var errs []string
	seen := map[string]int{}

	out := make([]Job, 0, len(list))
	for i, job := range list {
		job.Name = strings.TrimSpace(job.Name)

		label := fmt.Sprintf("jobs[%d]", i)
		if job.Name != "" {
			label = fmt.Sprintf("jobs[%d] (%q)", i, job.Name)
		}

		if job.Name == "" {
			errs = append(errs, label+": name is required")
		} else if prev, dup := seen[job.Name]; dup {
			errs = append(errs, fmt.Sprintf("%s: duplicate of jobs[%d]", label, prev))
		} else {
			seen[job.Name] = i
		}

		if len(job.Filters) == 0 {
			errs = append(errs, label+": at least one filter is required")
		}
		filters := make([]string, 0, len(job.Filters))
		for k, f := range job.Filters {
			f = strings.TrimSpace(f)
			if f == "" {
				errs = append(errs, fmt.Sprintf("%s: filters[%d] is empty", label, k))
				continue
			}
			filters = append(filters, f)
		}
		job.Filters = filters

		out = append(out, job)
	}

	if len(errs) > 0 {
		return nil, &ConfigError{Path: path, Reason: strings.Join(errs, "; ")}
	}
	return out, nil
}
