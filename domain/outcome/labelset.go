package outcome

import (
	"modelgate/domain/core"
)

// LabelSet holds aligned ground-truth labels, predicted labels, and optional
// prediction scores for one evaluation dataset.
// INVARIANTS:
// - Len() >= 1
// - truth, predicted, and scores (when present) have identical length
// - contents never change after construction
type LabelSet struct {
	truth     []bool
	predicted []bool
	scores    []float64
}

// NewLabelSet validates and wraps aligned label arrays. The slices are copied
// so later mutation by the caller cannot skew an evaluation in flight.
func NewLabelSet(truth, predicted []bool, scores []float64) (*LabelSet, error) {
	if len(truth) == 0 || len(predicted) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(truth) != len(predicted) {
		return nil, core.NewLengthMismatchError(len(truth), len(predicted))
	}
	if scores != nil && len(scores) != len(truth) {
		return nil, core.NewLengthMismatchError(len(truth), len(scores))
	}

	set := &LabelSet{
		truth:     append([]bool(nil), truth...),
		predicted: append([]bool(nil), predicted...),
	}
	if scores != nil {
		set.scores = append([]float64(nil), scores...)
	}
	return set, nil
}

// Len returns the number of label pairs
func (s *LabelSet) Len() int {
	return len(s.truth)
}

// HasScores reports whether prediction scores accompany the labels
func (s *LabelSet) HasScores() bool {
	return s.scores != nil
}

// At returns the truth/predicted pair at index i
func (s *LabelSet) At(i int) (truth, predicted bool) {
	return s.truth[i], s.predicted[i]
}

// ScoreAt returns the prediction score at index i; only valid when HasScores
func (s *LabelSet) ScoreAt(i int) float64 {
	return s.scores[i]
}

// Positives counts ground-truth positive labels
func (s *LabelSet) Positives() int {
	n := 0
	for _, v := range s.truth {
		if v {
			n++
		}
	}
	return n
}

// Negatives counts ground-truth negative labels
func (s *LabelSet) Negatives() int {
	return len(s.truth) - s.Positives()
}

// HasBothClasses reports whether ground truth contains at least one positive
// and one negative label. AUC is undefined otherwise.
func (s *LabelSet) HasBothClasses() bool {
	p := s.Positives()
	return p > 0 && p < len(s.truth)
}

// Truth returns a copy of the ground-truth labels
func (s *LabelSet) Truth() []bool {
	return append([]bool(nil), s.truth...)
}

// Predicted returns a copy of the predicted labels
func (s *LabelSet) Predicted() []bool {
	return append([]bool(nil), s.predicted...)
}

// Scores returns a copy of the prediction scores, or nil when absent
func (s *LabelSet) Scores() []float64 {
	if s.scores == nil {
		return nil
	}
	return append([]float64(nil), s.scores...)
}

// Fingerprint identifies the exact inputs of this set for audit trails
func (s *LabelSet) Fingerprint() core.DatasetFingerprint {
	return core.ComputeDatasetFingerprint(s.truth, s.predicted, s.scores)
}
