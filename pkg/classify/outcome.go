package classify

// Status is the presence-and-match classification of one field for one
// candidate. The string values are the labels written to reports.
type Status string

// Statuses.
const (
	StatusMatch           Status = "GT Present PR Present and match"
	StatusMismatch        Status = "GT Present PR Present but mismatch"
	StatusCandidateAbsent Status = "GT Present PR Absent"
	StatusReferenceAbsent Status = "GT Absent PR Present"
	StatusBothAbsent      Status = "GT Absent PR Absent"
)

// Statuses lists every status in report order.
var Statuses = []Status{
	StatusMatch,
	StatusMismatch,
	StatusCandidateAbsent,
	StatusReferenceAbsent,
	StatusBothAbsent,
}

// ParseStatus maps a report label back to a Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// String returns the report label.
func (s Status) String() string { return string(s) }

// Deterministic subtypes. Judge labels are used verbatim as subtypes.
const (
	SubtypeNone                 = "N/A"
	SubtypeExactMatch           = "exact_match"
	SubtypeToggleHiddenMatch    = "toggle_match_hidden_only"
	SubtypeToggleHiddenMismatch = "incorrect_toggle_hidden_mismatch"
	SubtypeJSONPartialMatch     = "json_partial_match"
	SubtypeAbsentAsHidden       = "correctly_absent_as_hidden"
	SubtypeIncorrect            = "incorrect"
)

// Outcome is the (status, subtype) pair assigned to one field and candidate.
type Outcome struct {
	Status  Status `json:"status" yaml:"status"`
	Subtype string `json:"subtype" yaml:"subtype"`
}

// IsMatch reports whether the outcome counts as a match.
func (o Outcome) IsMatch() bool { return o.Status == StatusMatch }

// CandidateAbsent reports whether the outcome treats the candidate as absent.
func (o Outcome) CandidateAbsent() bool {
	return o.Status == StatusCandidateAbsent || o.Status == StatusBothAbsent
}

// FailClosed is the outcome used whenever a both-present field cannot be resolved.
var FailClosed = Outcome{Status: StatusMismatch, Subtype: SubtypeIncorrect}
