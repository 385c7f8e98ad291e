package evaluate

import (
	"sort"

	"modelgate/domain/outcome"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// computeAUC derives AUC-ROC from continuous prediction scores. It returns
// ok=false when scores are absent or ground truth holds a single class,
// where the curve is undefined.
func computeAUC(set *outcome.LabelSet) (float64, bool) {
	if !set.HasScores() || !set.HasBothClasses() {
		return 0, false
	}

	n := set.Len()
	scores := make([]float64, n)
	classes := make([]bool, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		order[i] = i
	}
	// stat.ROC requires scores in ascending order
	sort.Slice(order, func(a, b int) bool {
		return set.ScoreAt(order[a]) < set.ScoreAt(order[b])
	})
	for i, idx := range order {
		scores[i] = set.ScoreAt(idx)
		truth, _ := set.At(idx)
		classes[i] = truth
	}

	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), true
}
