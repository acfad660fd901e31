package compliance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/panelcalc/engine/internal/demand"
	"github.com/panelcalc/engine/internal/metrics"
	"github.com/panelcalc/engine/internal/models"
	"github.com/panelcalc/engine/internal/peak"
	"github.com/panelcalc/engine/pkg/logger"
)

// BatchInput is everything a batch compliance run consumes. Readings are
// normalized per-site series; Rows is the flat load-row table across all
// solutions.
type BatchInput struct {
	Readings map[string][]models.Reading
	Sites    map[string]models.SiteSpec
	Rows     []models.LoadRow
	Edition  string
}

// Runner orchestrates peak estimation, demand-factor resolution and
// compliance evaluation across many sites and solutions.
type Runner struct {
	estimator    *peak.Estimator
	defaultVolts float64
	parallelism  int
}

func NewRunner(estimator *peak.Estimator, defaultVolts float64, parallelism int) *Runner {
	if estimator == nil {
		estimator = peak.New(peak.Options{})
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &Runner{
		estimator:    estimator,
		defaultVolts: defaultVolts,
		parallelism:  parallelism,
	}
}

// Run evaluates every solution in the input. An unsupported edition fails
// the whole batch; a site without a usable peak degrades only the solutions
// referencing it. Each distinct site's peak is computed exactly once and the
// cache is read-only for the remainder of the run.
func (r *Runner) Run(ctx context.Context, in BatchInput) ([]models.ComplianceResult, error) {
	edition, err := models.ParseEdition(in.Edition)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	started := time.Now()
	logger.Info("starting batch compliance run",
		zap.String("run_id", runID),
		zap.String("edition", string(edition)),
		zap.Int("rows", len(in.Rows)),
	)

	groups := groupRows(in.Rows)
	keys := make([]models.SolutionKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a].String() < keys[b].String() })

	peaks := r.buildPeakCache(in.Readings, keys)

	evaluator := NewEvaluator(edition, r.defaultVolts)
	results := make([]models.ComplianceResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine := demand.New(edition)
			totals := engine.Evaluate(groups[key])
			site, haveSite := in.Sites[key.SiteID]
			peakKW, hasPeak := peaks[key.SiteID]
			if !haveSite {
				results[i] = models.ComplianceResult{
					Solution:      key,
					AddedLoadKW:   totals.AddedLoadKW,
					RemovedLoadKW: totals.RemovedLoadKW,
					Verdict:       models.VerdictError,
					Reason:        fmt.Sprintf("no panel spec available for site %s", key.SiteID),
				}
			} else {
				results[i] = evaluator.Evaluate(key, peakKW, hasPeak, totals, site)
			}
			if results[i].Verdict == models.VerdictError {
				logger.Warn("solution degraded to error",
					zap.String("run_id", runID),
					zap.String("solution", key.String()),
					zap.String("reason", results[i].Reason),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		metrics.SolutionsEvaluated.WithLabelValues(string(res.Verdict)).Inc()
	}
	metrics.BatchDuration.Observe(time.Since(started).Seconds())

	logger.Info("batch compliance run finished",
		zap.String("run_id", runID),
		zap.Int("solutions", len(results)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return results, nil
}

// buildPeakCache estimates each referenced site's historical peak exactly
// once, before any solution is evaluated. Sites whose series is missing or
// unusable are simply absent from the map.
func (r *Runner) buildPeakCache(readings map[string][]models.Reading, keys []models.SolutionKey) map[string]float64 {
	peaks := make(map[string]float64)
	visited := make(map[string]struct{})
	for _, key := range keys {
		siteID := key.SiteID
		if _, done := visited[siteID]; done {
			continue
		}
		visited[siteID] = struct{}{}
		series, ok := readings[siteID]
		if !ok {
			continue
		}
		result, err := r.estimator.Estimate(series)
		if err != nil {
			logger.Warn("peak estimation failed for site",
				zap.String("site_id", siteID),
				zap.Error(err),
			)
			continue
		}
		peaks[siteID] = result.PeakKW
		metrics.SitePeaksComputed.Inc()
	}
	return peaks
}

func groupRows(rows []models.LoadRow) map[models.SolutionKey][]models.LoadRow {
	groups := make(map[models.SolutionKey][]models.LoadRow)
	for _, row := range rows {
		key := row.Key()
		groups[key] = append(groups[key], row)
	}
	return groups
}
