package bootstrap

import (
	"context"
	"sort"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/outcome"
	"modelgate/ports"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MetricFunc computes one metric from a resample's confusion tally.
// Implementations must stay finite on degenerate tallies; the ratio
// helpers on ConfusionCounts already return 0.0 for empty denominators.
type MetricFunc func(counts metrics.ConfusionCounts) float64

// Estimator computes bootstrap confidence intervals for classification
// metrics by resampling label pairs with replacement.
//
// Determinism: iteration i always draws its indices from the stream
// derived from (seed, i), so the same seed and inputs reproduce the exact
// interval bounds regardless of worker scheduling.
type Estimator struct {
	rng        ports.RNGPort
	iterations int
	confidence float64
	numWorkers int
	logger     *zap.Logger
}

// NewEstimator creates an estimator with validated parameters
func NewEstimator(rng ports.RNGPort, iterations int, confidence float64, logger *zap.Logger) (*Estimator, error) {
	if iterations < 1 {
		return nil, core.ErrInvalidIterations
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, core.ErrInvalidConfidence
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Balance between CPU cores and memory usage
	numWorkers := 4
	if iterations < 100 {
		numWorkers = 1
	}

	return &Estimator{
		rng:        rng,
		iterations: iterations,
		confidence: confidence,
		numWorkers: numWorkers,
		logger:     logger,
	}, nil
}

// Iterations returns the configured bootstrap iteration count
func (e *Estimator) Iterations() int { return e.iterations }

// Confidence returns the configured confidence level
func (e *Estimator) Confidence() float64 { return e.confidence }

// Estimate bootstraps a single metric over the label set
func (e *Estimator) Estimate(ctx context.Context, set *outcome.LabelSet, seed int64, metric metrics.Metric, fn MetricFunc) (metrics.MetricEstimate, error) {
	results, err := e.EstimateAll(ctx, set, seed, map[metrics.Metric]MetricFunc{metric: fn})
	if err != nil {
		return metrics.MetricEstimate{}, err
	}
	return results[metric], nil
}

// EstimateAll bootstraps several metrics over one shared resampling pass.
// Each iteration draws a single set of indices and tallies one confusion
// matrix; every metric function is applied to that same tally. Sharing the
// draw across metrics keeps a snapshot's intervals mutually consistent and
// halves the work of evaluating metrics separately.
func (e *Estimator) EstimateAll(ctx context.Context, set *outcome.LabelSet, seed int64, fns map[metrics.Metric]MetricFunc) (map[metrics.Metric]metrics.MetricEstimate, error) {
	n := set.Len()

	// Point estimates come from the full dataset, never from a resample
	fullCounts := tallyFull(set)
	points := make(map[metrics.Metric]float64, len(fns))
	for name, fn := range fns {
		points[name] = fn(fullCounts)
	}

	scores := make(map[metrics.Metric][]float64, len(fns))
	for name := range fns {
		scores[name] = make([]float64, e.iterations)
	}

	g, gctx := errgroup.WithContext(ctx)
	work := make(chan int)

	g.Go(func() error {
		defer close(work)
		for i := 0; i < e.iterations; i++ {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < e.numWorkers; w++ {
		g.Go(func() error {
			for i := range work {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				stream := e.rng.IterationStream(seed, i)
				var tally metrics.ConfusionCounts
				for draw := 0; draw < n; draw++ {
					truth, predicted := set.At(stream.Intn(n))
					switch {
					case truth && predicted:
						tally.TruePositives++
					case !truth && predicted:
						tally.FalsePositives++
					case truth && !predicted:
						tally.FalseNegatives++
					default:
						tally.TrueNegatives++
					}
				}

				// Distinct iterations write distinct indices, so no lock
				for name, fn := range fns {
					scores[name][i] = fn(tally)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	alpha := 1.0 - e.confidence
	lowerP := (alpha / 2.0) * 100.0
	upperP := (1.0 - alpha/2.0) * 100.0

	results := make(map[metrics.Metric]metrics.MetricEstimate, len(fns))
	for name := range fns {
		dist := scores[name]
		estimate, err := metrics.NewMetricEstimate(
			points[name],
			percentile(dist, lowerP),
			percentile(dist, upperP),
			e.confidence,
			e.iterations,
		)
		if err != nil {
			return nil, err
		}
		results[name] = estimate

		summary := summarize(dist)
		e.logger.Debug("bootstrap_distribution",
			zap.String("metric", string(name)),
			zap.Int("iterations", e.iterations),
			zap.Int64("seed", seed),
			zap.Float64("mean", summary.Mean),
			zap.Float64("std_dev", summary.StdDev),
			zap.Float64("min", summary.Min),
			zap.Float64("max", summary.Max),
		)
	}

	return results, nil
}

// tallyFull counts confusion outcomes over the whole label set
func tallyFull(set *outcome.LabelSet) metrics.ConfusionCounts {
	var tally metrics.ConfusionCounts
	for i := 0; i < set.Len(); i++ {
		truth, predicted := set.At(i)
		switch {
		case truth && predicted:
			tally.TruePositives++
		case !truth && predicted:
			tally.FalsePositives++
		case truth && !predicted:
			tally.FalseNegatives++
		default:
			tally.TrueNegatives++
		}
	}
	return tally
}

// DistributionSummary gives key statistics about a bootstrap distribution
type DistributionSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func summarize(data []float64) DistributionSummary {
	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	return DistributionSummary{Mean: mean, StdDev: stdDev, Min: min, Max: max}
}

// percentile computes the p-th percentile with linear interpolation
// between order statistics
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
