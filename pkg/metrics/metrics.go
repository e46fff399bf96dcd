// Package metrics summarises reconciliation outcomes into coverage,
// accuracy and extra-field counts.
package metrics

import (
	"fmt"
	"sort"

	"github.com/agentstation/fieldeval/pkg/classify"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Summary holds the scores for one candidate version or one tenant.
type Summary struct {
	Label           string   `json:"label" yaml:"label"`
	TotalFields     int      `json:"total_fields" yaml:"total_fields"`
	Match           int      `json:"match" yaml:"match"`
	Mismatch        int      `json:"mismatch" yaml:"mismatch"`
	CandidateAbsent int      `json:"candidate_absent" yaml:"candidate_absent"`
	ReferenceAbsent int      `json:"reference_absent" yaml:"reference_absent"`
	BothAbsent      int      `json:"both_absent" yaml:"both_absent"`
	Coverage        float64  `json:"coverage" yaml:"coverage"`
	Accuracy        float64  `json:"accuracy" yaml:"accuracy"`
	ExtraFields     int      `json:"extra_fields" yaml:"extra_fields"`
	ExtraFieldNames []string `json:"extra_field_names,omitempty" yaml:"extra_field_names,omitempty"`
}

// Tally accumulates outcomes. The zero value is ready to use.
type Tally struct {
	counts map[classify.Status]int
	extras []string
	total  int
}

// Add records the outcome of one field.
func (t *Tally) Add(field record.FieldName, status classify.Status) {
	if t.counts == nil {
		t.counts = make(map[classify.Status]int)
	}
	t.counts[status]++
	t.total++
	if status == classify.StatusReferenceAbsent {
		t.extras = append(t.extras, field.String())
	}
}

// Summary computes the scores under label.
//
// Coverage is (match+mismatch) / (match+mismatch+candidate absent) and
// accuracy is match / (match+mismatch); both are 0 when their denominator is 0.
func (t *Tally) Summary(label string) Summary {
	s := Summary{
		Label:           label,
		TotalFields:     t.total,
		Match:           t.counts[classify.StatusMatch],
		Mismatch:        t.counts[classify.StatusMismatch],
		CandidateAbsent: t.counts[classify.StatusCandidateAbsent],
		ReferenceAbsent: t.counts[classify.StatusReferenceAbsent],
		BothAbsent:      t.counts[classify.StatusBothAbsent],
	}

	predicted := s.Match + s.Mismatch
	if denom := predicted + s.CandidateAbsent; denom > 0 {
		s.Coverage = float64(predicted) / float64(denom)
	}
	if predicted > 0 {
		s.Accuracy = float64(s.Match) / float64(predicted)
	}

	s.ExtraFields = s.ReferenceAbsent
	if len(t.extras) > 0 {
		s.ExtraFieldNames = append([]string(nil), t.extras...)
		sort.Strings(s.ExtraFieldNames)
	}
	return s
}

// Percent formats a ratio the way reports show it, e.g. 0.8125 as "81.25%".
func Percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}
