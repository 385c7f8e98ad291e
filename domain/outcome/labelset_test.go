package outcome

import (
	"errors"
	"testing"

	"modelgate/domain/core"
)

func TestNewLabelSet_Validation(t *testing.T) {
	if _, err := NewLabelSet(nil, nil, nil); !errors.Is(err, core.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
	if _, err := NewLabelSet([]bool{true}, []bool{true, false}, nil); !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch for labels, got %v", err)
	}
	if _, err := NewLabelSet([]bool{true, false}, []bool{true, false}, []float64{0.5}); !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch for scores, got %v", err)
	}
}

func TestLabelSet_ImmutableAgainstCallerMutation(t *testing.T) {
	truth := []bool{true, false, true}
	predicted := []bool{true, false, false}

	set, err := NewLabelSet(truth, predicted, nil)
	if err != nil {
		t.Fatalf("NewLabelSet failed: %v", err)
	}

	truth[0] = false
	predicted[2] = true

	gotTruth, gotPred := set.At(0)
	if !gotTruth || !gotPred {
		t.Error("mutating the source slices changed the set")
	}
}

func TestLabelSet_ClassCounts(t *testing.T) {
	set, err := NewLabelSet(
		[]bool{true, false, true, false, false},
		[]bool{true, true, false, false, false},
		nil,
	)
	if err != nil {
		t.Fatalf("NewLabelSet failed: %v", err)
	}

	if set.Positives() != 2 {
		t.Errorf("positives = %d, want 2", set.Positives())
	}
	if set.Negatives() != 3 {
		t.Errorf("negatives = %d, want 3", set.Negatives())
	}
	if !set.HasBothClasses() {
		t.Error("expected both classes present")
	}

	onlyPositive, _ := NewLabelSet([]bool{true, true}, []bool{true, false}, nil)
	if onlyPositive.HasBothClasses() {
		t.Error("single-class set reported both classes")
	}
}

func TestLabelSet_FingerprintStability(t *testing.T) {
	build := func() *LabelSet {
		set, err := NewLabelSet(
			[]bool{true, false, true},
			[]bool{true, false, false},
			[]float64{0.9, 0.1, 0.4},
		)
		if err != nil {
			t.Fatalf("NewLabelSet failed: %v", err)
		}
		return set
	}

	a := build()
	b := build()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical inputs produced different fingerprints")
	}

	c, _ := NewLabelSet([]bool{true, false, false}, []bool{true, false, false}, []float64{0.9, 0.1, 0.4})
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different inputs produced the same fingerprint")
	}
}
