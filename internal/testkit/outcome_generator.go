package testkit

import (
	"math/rand"

	"modelgate/domain/outcome"

	"gonum.org/v1/gonum/stat/distuv"
)

// OutcomeGeneratorConfig configures the synthetic labeled-outcome generator
type OutcomeGeneratorConfig struct {
	SampleCount int     `json:"sample_count"`
	FraudRate   float64 `json:"fraud_rate"`
	// Recall of the simulated model: probability a fraud case is flagged
	DetectionRate float64 `json:"detection_rate"`
	// FPR of the simulated model: probability a legit case is flagged
	FalseAlarmRate float64 `json:"false_alarm_rate"`
	Seed           int64   `json:"seed"`
}

// DefaultOutcomeConfig returns a plausible fraud-detection scenario:
// rare positives, a strong but imperfect model.
func DefaultOutcomeConfig() OutcomeGeneratorConfig {
	return OutcomeGeneratorConfig{
		SampleCount:    1000,
		FraudRate:      0.05,
		DetectionRate:  0.92,
		FalseAlarmRate: 0.005,
		Seed:           42,
	}
}

// OutcomeGenerator produces synthetic labeled prediction outcomes with a
// controllable confusion balance. Scores are Beta-distributed, skewed high
// for flagged cases and low for cleared ones, so ROC curves look realistic.
type OutcomeGenerator struct {
	config OutcomeGeneratorConfig
	rng    *rand.Rand
}

// NewOutcomeGenerator creates a generator with a fixed seed
func NewOutcomeGenerator(config OutcomeGeneratorConfig) *OutcomeGenerator {
	return &OutcomeGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces one labeled outcome set. Repeated calls on the same
// generator advance the stream; rebuild the generator to replay.
func (g *OutcomeGenerator) Generate() (*outcome.LabelSet, error) {
	n := g.config.SampleCount
	truth := make([]bool, n)
	predicted := make([]bool, n)
	scores := make([]float64, n)

	// Inverse-CDF sampling through our own stream keeps generation
	// deterministic without wiring a second RNG source type
	flagged := distuv.Beta{Alpha: 8, Beta: 2}
	cleared := distuv.Beta{Alpha: 2, Beta: 8}

	for i := 0; i < n; i++ {
		isFraud := g.rng.Float64() < g.config.FraudRate
		truth[i] = isFraud

		if isFraud {
			predicted[i] = g.rng.Float64() < g.config.DetectionRate
		} else {
			predicted[i] = g.rng.Float64() < g.config.FalseAlarmRate
		}

		if predicted[i] {
			scores[i] = flagged.Quantile(g.rng.Float64())
		} else {
			scores[i] = cleared.Quantile(g.rng.Float64())
		}
	}

	return outcome.NewLabelSet(truth, predicted, scores)
}

// GenerateWithoutScores produces a labeled outcome set with no continuous
// scores, for exercising the AUC-absent path
func (g *OutcomeGenerator) GenerateWithoutScores() (*outcome.LabelSet, error) {
	set, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return outcome.NewLabelSet(set.Truth(), set.Predicted(), nil)
}
