package store

import (
	"fmt"
	"strings"
)

// NoResultsMarker is returned for zero-row results so the consuming stage can
// report absence of data instead of treating it as empty text.
const NoResultsMarker = "No results found."

// FormatResult renders a result as a delimited text table for LLM consumption.
// At most previewRows rows are shown; when the result is larger an explicit
// "... and N more rows" marker is appended so the true size is never hidden.
// A Truncated result reports open-ended counts since rows beyond the cap were
// never scanned.
func FormatResult(res *Result, previewRows int) string {
	if res == nil || len(res.Rows) == 0 {
		return NoResultsMarker
	}

	if previewRows <= 0 {
		previewRows = 50
	}

	var b strings.Builder
	header := strings.Join(res.Columns, " | ")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(header)))

	shown := len(res.Rows)
	if shown > previewRows {
		shown = previewRows
	}

	for _, row := range res.Rows[:shown] {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(cells, " | "))
	}

	hidden := len(res.Rows) - shown
	switch {
	case res.Truncated:
		// the row cap stopped the scan, so the true size is unknown
		b.WriteString(fmt.Sprintf("\n... and at least %d more rows", hidden+1))
	case hidden > 0:
		b.WriteString(fmt.Sprintf("\n... and %d more rows", hidden))
	}

	if res.Truncated {
		b.WriteString(fmt.Sprintf("\n\nTotal: more than %d row(s)", len(res.Rows)))
	} else {
		b.WriteString(fmt.Sprintf("\n\nTotal: %d row(s)", len(res.Rows)))
	}
	return b.String()
}
