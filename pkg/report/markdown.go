package report

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/fieldeval/pkg/metrics"
)

// Markdown writes a metrics digest: a title, a scores table and, when
// present, the extra fields each group predicted.
func Markdown(w io.Writer, title string, summaries []metrics.Summary) error {
	doc := md.NewMarkdown(w)
	doc.H1(title).LF()

	if len(summaries) == 0 {
		doc.PlainText(md.Italic("No results.")).LF()
		return doc.Build()
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Label,
			itoa(s.TotalFields),
			itoa(s.Match),
			itoa(s.Mismatch),
			itoa(s.CandidateAbsent),
			metrics.Percent(s.Coverage),
			metrics.Percent(s.Accuracy),
			itoa(s.ExtraFields),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Label", "Fields", "Match", "Mismatch", "Missing", "Coverage", "Accuracy", "Extra Fields"},
		Rows:   rows,
	}).LF()

	for _, s := range summaries {
		if len(s.ExtraFieldNames) == 0 {
			continue
		}
		doc.H2(fmt.Sprintf("Extra fields: %s", s.Label)).LF()
		doc.PlainText(md.Code(strings.Join(s.ExtraFieldNames, ", "))).LF()
	}
	return doc.Build()
}
