package judge

import (
	"fmt"

	"github.com/agentstation/fieldeval/pkg/record"
)

const promptTemplate = `Analyze the predicted value compared to the ground truth for a given field and categorize the prediction.

Field Information:
- Field Name: %q
- Ground Truth (GT) Value: %q
- Predicted Value: %q

Return ONLY ONE of the following category names:
- no_prediction
- default_match
- json_partial_correct
- genuine_prediction
- incorrect

Rules:
1. no_prediction: the predicted value is empty, null or effectively blank.
2. default_match: the predicted value is a generic default that is nonetheless equivalent to the ground truth.
3. json_partial_correct: both values are JSON and the prediction captures the essential structure and values of the ground truth.
4. genuine_prediction: the prediction is a plausible, specific, non-default attempt that differs from the ground truth.
5. incorrect: the prediction is clearly wrong.

Respond with the category name only.`

// Prompt builds the classification prompt for one field.
func Prompt(field record.FieldName, reference, candidate string) string {
	return fmt.Sprintf(promptTemplate, field.String(), reference, candidate)
}
