package classify

import (
	"context"

	"github.com/agentstation/fieldeval/pkg/record"
)

// Judge is the semantic fallback consulted when deterministic rules cannot
// resolve two present values. It returns one label from its vocabulary.
type Judge interface {
	Judge(ctx context.Context, field record.FieldName, reference, candidate string) (string, error)
}

// JudgeFunc adapts a function to the Judge interface.
type JudgeFunc func(ctx context.Context, field record.FieldName, reference, candidate string) (string, error)

// Judge calls f.
func (f JudgeFunc) Judge(ctx context.Context, field record.FieldName, reference, candidate string) (string, error) {
	return f(ctx, field, reference, candidate)
}

// Judge labels understood by default.
const (
	LabelNoPrediction       = "no_prediction"
	LabelDefaultMatch       = "default_match"
	LabelJSONPartialCorrect = "json_partial_correct"
	LabelGenuinePrediction  = "genuine_prediction"
	LabelIncorrect          = "incorrect"
)

// Labels is the default judge vocabulary.
var Labels = []string{
	LabelNoPrediction,
	LabelDefaultMatch,
	LabelJSONPartialCorrect,
	LabelGenuinePrediction,
	LabelIncorrect,
}

// DefaultMatchLabels are the judge labels that count as a match.
var DefaultMatchLabels = []string{LabelDefaultMatch, LabelJSONPartialCorrect}
