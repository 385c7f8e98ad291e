package evaluate

import (
	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/outcome"
)

// Count tallies confusion outcomes from aligned ground-truth and predicted
// label arrays. Degenerate inputs (all one label) simply leave the absent
// cells at zero.
func Count(truth, predicted []bool) (metrics.ConfusionCounts, error) {
	if len(truth) == 0 || len(predicted) == 0 {
		return metrics.ConfusionCounts{}, core.ErrEmptyDataset
	}
	if len(truth) != len(predicted) {
		return metrics.ConfusionCounts{}, core.NewLengthMismatchError(len(truth), len(predicted))
	}

	var counts metrics.ConfusionCounts
	for i := range truth {
		switch {
		case truth[i] && predicted[i]:
			counts.TruePositives++
		case !truth[i] && predicted[i]:
			counts.FalsePositives++
		case truth[i] && !predicted[i]:
			counts.FalseNegatives++
		default:
			counts.TrueNegatives++
		}
	}
	return counts, nil
}

// CountSet tallies confusion outcomes over a label set
func CountSet(set *outcome.LabelSet) metrics.ConfusionCounts {
	var counts metrics.ConfusionCounts
	for i := 0; i < set.Len(); i++ {
		truth, predicted := set.At(i)
		switch {
		case truth && predicted:
			counts.TruePositives++
		case !truth && predicted:
			counts.FalsePositives++
		case truth && !predicted:
			counts.FalseNegatives++
		default:
			counts.TrueNegatives++
		}
	}
	return counts
}
