package ports

import (
	"context"

	"modelgate/domain/core"
	"modelgate/domain/outcome"
)

// OutcomeSource resolves labeled prediction outcomes for a model from
// upstream storage. The engine never queries transaction stores itself;
// callers hand it aligned arrays through this port.
type OutcomeSource interface {
	ResolveOutcomes(ctx context.Context, req OutcomeRequest) (*outcome.LabelSet, error)
}

// OutcomeRequest identifies which labeled outcomes to resolve
type OutcomeRequest struct {
	ModelID core.ModelID
	// Source names the dataset within the source, e.g. a file path or a
	// query label. Interpretation belongs to the adapter.
	Source string
	// WithScores requests continuous prediction scores alongside labels
	WithScores bool
	Limit      int
}
