package output

import (
	"io"

	"github.com/agentstation/fieldeval/internal/cmd/table"
)

// Print writes tabular for table and wide formats and raw for structured
// formats. tabular is only called when needed.
func Print(w io.Writer, format Format, tabular func(wide bool) table.Data, raw any) error {
	formatter := NewFormatter(format)
	switch format {
	case FormatTable, FormatWide, "":
		return formatter.Format(w, tabular(format == FormatWide))
	default:
		return formatter.Format(w, raw)
	}
}
