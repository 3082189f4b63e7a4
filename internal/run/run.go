// Package run drives a full extract run: load the job list, query the
// catalog job by job, persist results.json and seed the price books.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"craftdex-engine/internal/catalog"
	"craftdex-engine/internal/config"
	"craftdex-engine/internal/extract"
	"craftdex-engine/internal/jobs"
	"craftdex-engine/internal/jsonio"
	"craftdex-engine/internal/logging"
	"craftdex-engine/internal/pricebook"
	"craftdex-engine/internal/results"
)

// Paths locates every file a run touches inside the data directory.
type Paths struct {
	DataDir     string
	Jobs        string
	Results     string
	Equipments  string
	Ingredients string
	Recipes     string
	Lock        string
}

// DefaultPaths lays the run files out under dataDir. Jobs and results
// file names come from config; the price book names are fixed.
func DefaultPaths(dataDir string, cfg config.Paths) Paths {
	return Paths{
		DataDir:     dataDir,
		Jobs:        filepath.Join(dataDir, cfg.JobsFile),
		Results:     filepath.Join(dataDir, cfg.ResultsFile),
		Equipments:  filepath.Join(dataDir, "equipments.json"),
		Ingredients: filepath.Join(dataDir, "ingredients_price.json"),
		Recipes:     filepath.Join(dataDir, "recipes_price.json"),
		Lock:        filepath.Join(dataDir, "craftdex.lock"),
	}
}

type Runner struct {
	cfg   config.Config
	paths Paths
	log   *logrus.Logger
	out   io.Writer
}

func New(cfg config.Config, paths Paths, log *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, paths: paths, log: log, out: os.Stdout}
}

// SetOutput redirects the summary block, which goes to stdout by
// default.
func (r *Runner) SetOutput(w io.Writer) { r.out = w }

// Run executes the whole pipeline once. Per-job failures are logged and
// skipped; Run only errors when the job list is unusable, the output
// cannot be written, or not a single job succeeded.
func (r *Runner) Run(ctx context.Context) (*results.Summary, error) {
	runID := uuid.New().String()
	log := r.log.WithField("run", runID[:8])

	lock := flock.New(r.paths.Lock)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run holds %s", r.paths.Lock)
	}
	defer func() { _ = lock.Unlock() }()

	defer logging.TimeBlock(log, "run")()

	jobList, err := jobs.Load(r.paths.Jobs)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d jobs from %s", len(jobList), r.paths.Jobs)

	client := catalog.New(r.cfg.Catalog, log)
	ext := extract.New(client, r.cfg.Catalog.LevelMin, r.cfg.Catalog.LevelMax, log)

	set := results.NewSet()
	sum := results.NewSummary(runID)

	for _, job := range jobList {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		start := time.Now()
		items, err := ext.ItemsForJob(ctx, job)
		elapsed := time.Since(start)
		if err != nil {
			log.WithField("job", job.Name).Warnf("skipping job: %v", err)
			sum.AddFailure(job.Name, elapsed, err)
			continue
		}

		set.Add(job.Name, items)
		sum.AddSuccess(job.Name, len(items), elapsed)
		log.Infof("%s: %d items in %s", job.Name, len(items), elapsed.Round(time.Millisecond))
	}

	if !sum.Ok() {
		return sum, fmt.Errorf("no jobs could be processed (%d failed)", len(sum.Failed))
	}

	if err := jsonio.WriteAtomic(r.paths.Results, set.ByJob()); err != nil {
		return sum, err
	}
	log.Infof("wrote %d items for %d jobs to %s", set.TotalItems(), set.Len(), r.paths.Results)

	if r.cfg.Pricebook {
		books := pricebook.Build(set)
		if err := books.Write(r.paths.Equipments, r.paths.Ingredients, r.paths.Recipes); err != nil {
			return sum, err
		}
		log.Infof("seeded price books under %s", r.paths.DataDir)
	}

	sum.Finish()
	sum.Print(r.out, r.paths.Results)
	return sum, nil
}
