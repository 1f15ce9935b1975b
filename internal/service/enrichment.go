package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/embellish/internal/boundary"
	"github.com/UnknownOlympus/embellish/internal/config"
	"github.com/UnknownOlympus/embellish/internal/dockfile"
	"github.com/UnknownOlympus/embellish/internal/metrics"
	"github.com/UnknownOlympus/embellish/internal/models"
	"github.com/UnknownOlympus/embellish/internal/repository"
	"github.com/UnknownOlympus/embellish/internal/spatial"
	"golang.org/x/sync/errgroup"
)

// Options describes what a run reads, matches and writes.
type Options struct {
	Input        string               // Input is the dock CSV path.
	Output       string               // Output is the enriched CSV path.
	Layers       []config.LayerConfig // Layers are matched in this order.
	SpatialIndex bool                 // SpatialIndex enables the R-tree prefilter.
	Workers      int                  // Workers persisting districts concurrently.
	DockKey      string               // DockKey is the column identifying a dock in the database.
}

// EnrichmentService tags every dock of a CSV file with the boundaries containing it.
type EnrichmentService struct {
	log      *slog.Logger
	provider boundary.Provider
	repo     repository.Interface // repo is nil when districts are not persisted
	metrics  *metrics.Metrics
	opts     Options
}

// NewEnrichmentService creates a new instance of EnrichmentService.
// repo may be nil, in which case the run ends after writing the output file.
func NewEnrichmentService(
	log *slog.Logger,
	provider boundary.Provider,
	repo repository.Interface,
	metrics *metrics.Metrics,
	opts Options,
) *EnrichmentService {
	return &EnrichmentService{
		log:      log,
		provider: provider,
		repo:     repo,
		metrics:  metrics,
		opts:     opts,
	}
}

// Run executes a single enrichment pass: it loads the boundary layers and the
// docks side by side, assigns every dock to the first intersecting boundary of
// each layer, writes the output file and, when a repository is set, stores the
// assignments. Nothing is written when loading or matching fails.
//
// Errors are *StageError values. When only persistence fails the report is
// returned along with the error, the output file having been written already.
func (es *EnrichmentService) Run(ctx context.Context) (*models.Report, error) {
	start := time.Now()
	report := models.NewReport()

	es.log.InfoContext(ctx, "Enrichment started", "input", es.opts.Input, "layers", len(es.opts.Layers))

	layers, set, err := es.load(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]string, len(es.opts.Layers))
	for i, lc := range es.opts.Layers {
		columns[i] = lc.Column
	}
	set.AppendColumns(columns...)

	if err = es.match(ctx, layers, set, report); err != nil {
		return nil, err
	}

	if err = dockfile.Write(es.opts.Output, set); err != nil {
		return nil, stageError(ErrDockWrite, err)
	}
	report.Docks = len(set.Docks)

	es.log.InfoContext(ctx, "Enriched docks written", "output", es.opts.Output, "docks", report.Docks)

	if es.repo != nil {
		if err = es.persist(ctx, set, report); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	es.metrics.LastSuccess.SetToCurrentTime()
	es.log.InfoContext(ctx, "Enrichment finished", "docks", report.Docks, "duration", report.Duration)

	return report, nil
}

// load fetches every layer and reads the dock file concurrently.
// The first failure cancels the remaining work.
func (es *EnrichmentService) load(ctx context.Context) ([]*spatial.Layer, *models.DockSet, error) {
	group, gctx := errgroup.WithContext(ctx)

	layers := make([]*spatial.Layer, len(es.opts.Layers))
	for i, lc := range es.opts.Layers {
		group.Go(func() error {
			layer, err := es.loadLayer(gctx, lc)
			if err != nil {
				return err
			}
			layers[i] = layer
			return nil
		})
	}

	var set *models.DockSet
	group.Go(func() error {
		var err error
		if set, err = dockfile.Read(es.opts.Input); err != nil {
			return stageError(ErrDockRead, err)
		}
		es.log.InfoContext(gctx, "Docks loaded", "docks", len(set.Docks), "columns", len(set.Header))
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return layers, set, nil
}

func (es *EnrichmentService) loadLayer(ctx context.Context, lc config.LayerConfig) (*spatial.Layer, error) {
	startTime := time.Now()
	boundaries, err := es.provider.Fetch(ctx, lc.Source)
	es.metrics.FetchSeconds.WithLabelValues(lc.Name).Observe(time.Since(startTime).Seconds())

	if err != nil {
		es.metrics.FetchErrors.Inc()
		return nil, stageError(ErrBoundaryFetch, fmt.Errorf("layer %s: %w", lc.Name, err))
	}

	layer := spatial.NewLayer(lc.Name, lc.Attribute, boundaries, es.opts.SpatialIndex)
	es.metrics.Boundaries.WithLabelValues(lc.Name).Set(float64(layer.Len()))
	es.log.InfoContext(ctx, "Boundary layer loaded", "layer", lc.Name, "boundaries", layer.Len())

	return layer, nil
}

func (es *EnrichmentService) match(
	ctx context.Context,
	layers []*spatial.Layer,
	set *models.DockSet,
	report *models.Report,
) error {
	for i, dock := range set.Docks {
		coords, err := dock.Coordinates()
		if err != nil {
			// Rows are numbered as in the file, after the header.
			return stageError(ErrMatch, fmt.Errorf("row %d: %w", i+2, err))
		}

		for j, layer := range layers {
			value := layer.Match(coords)
			dock[es.opts.Layers[j].Column] = value

			result := "matched"
			if value == "" {
				result = "unassigned"
				report.Unassigned[layer.Name]++
			} else {
				report.Matched[layer.Name]++
			}
			es.metrics.Assignments.WithLabelValues(layer.Name, result).Inc()
		}
	}

	for _, layer := range layers {
		es.log.InfoContext(ctx, "Layer matched", "layer", layer.Name,
			"matched", report.Matched[layer.Name], "unassigned", report.Unassigned[layer.Name])
	}

	return nil
}

// persist stores the assignment of every dock through a fixed pool of workers.
// Failures do not stop the other workers; they are joined into one error.
func (es *EnrichmentService) persist(ctx context.Context, set *models.DockSet, report *models.Report) error {
	if !set.HasColumn(es.opts.DockKey) {
		return stageError(ErrPersist, fmt.Errorf("dock key column %q is missing", es.opts.DockKey))
	}

	workers := max(es.opts.Workers, 1)
	es.log.InfoContext(ctx, "Persisting districts. Starting worker pool.",
		"jobs", len(set.Docks), "num_workers", workers)

	jobs := make(chan models.Dock, len(set.Docks))
	results := &persistResults{}
	var wgr sync.WaitGroup

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go es.worker(ctx, i, &wgr, jobs, results)
	}

	for _, dock := range set.Docks {
		jobs <- dock
	}
	close(jobs)

	wgr.Wait()

	report.Persisted = results.persisted
	report.Skipped = results.skipped
	es.log.InfoContext(ctx, "Persisting finished", "persisted", report.Persisted, "skipped", report.Skipped,
		"failed", len(results.errs))

	if len(results.errs) > 0 {
		return stageError(ErrPersist, errors.Join(results.errs...))
	}

	return nil
}

type persistResults struct {
	mu        sync.Mutex
	persisted int
	skipped   int
	errs      []error
}

func (es *EnrichmentService) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	jobs <-chan models.Dock,
	results *persistResults,
) {
	defer wg.Done()
	for dock := range jobs {
		es.metrics.ActiveWorkers.Inc()
		key := dock[es.opts.DockKey]

		if key == "" {
			es.log.WarnContext(ctx, "Dock without key skipped", "worker", idx, "column", es.opts.DockKey)
			es.metrics.DocksPersisted.WithLabelValues("skipped").Inc()
			results.mu.Lock()
			results.skipped++
			results.mu.Unlock()
			es.metrics.ActiveWorkers.Dec()
			continue
		}

		updated, err := es.repo.UpdateDockDistricts(ctx, key, dock.Districts())

		results.mu.Lock()
		switch {
		case err != nil:
			es.log.ErrorContext(ctx, "Failed to persist dock districts", "worker", idx, "dock", key, "error", err)
			es.metrics.DocksPersisted.WithLabelValues("failure").Inc()
			results.errs = append(results.errs, fmt.Errorf("dock %q: %w", key, err))
		case !updated:
			es.log.DebugContext(ctx, "Dock is not in the database", "worker", idx, "dock", key)
			es.metrics.DocksPersisted.WithLabelValues("skipped").Inc()
			results.skipped++
		default:
			es.metrics.DocksPersisted.WithLabelValues("success").Inc()
			results.persisted++
		}
		results.mu.Unlock()

		es.metrics.ActiveWorkers.Dec()
	}
}
