package store

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatResultEmpty(t *testing.T) {
	if got := FormatResult(nil, 50); got != NoResultsMarker {
		t.Errorf("FormatResult(nil) = %q, want %q", got, NoResultsMarker)
	}

	res := &Result{Columns: []string{"id"}, Rows: [][]any{}}
	if got := FormatResult(res, 50); got != NoResultsMarker {
		t.Errorf("FormatResult(empty) = %q, want %q", got, NoResultsMarker)
	}
}

func TestFormatResultTable(t *testing.T) {
	res := &Result{
		Columns: []string{"name", "calls"},
		Rows: [][]any{
			{"Elena Mora", 4},
			{"Maya Lindqvist", 2},
		},
	}

	got := FormatResult(res, 50)

	if !strings.HasPrefix(got, "name | calls\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "Elena Mora | 4") {
		t.Errorf("missing row: %q", got)
	}
	if !strings.HasSuffix(got, "Total: 2 row(s)") {
		t.Errorf("missing total trailer: %q", got)
	}
	if strings.Contains(got, "more rows") {
		t.Errorf("unexpected truncation marker: %q", got)
	}
}

func TestFormatResultNull(t *testing.T) {
	res := &Result{
		Columns: []string{"company"},
		Rows:    [][]any{{nil}},
	}

	got := FormatResult(res, 50)
	if !strings.Contains(got, "NULL") {
		t.Errorf("nil cell not rendered as NULL: %q", got)
	}
}

func TestFormatResultTruncation(t *testing.T) {
	rows := make([][]any, 60)
	for i := range rows {
		rows[i] = []any{i}
	}
	res := &Result{Columns: []string{"n"}, Rows: rows}

	got := FormatResult(res, 50)

	if !strings.Contains(got, "... and 10 more rows") {
		t.Errorf("missing truncation marker: %q", got)
	}
	if !strings.Contains(got, "Total: 60 row(s)") {
		t.Errorf("total must report the full count: %q", got)
	}
	if strings.Contains(got, fmt.Sprintf("\n%d", 50)) {
		t.Errorf("row beyond preview was rendered: %q", got)
	}
}

func TestFormatResultCapped(t *testing.T) {
	// a capped scan holds exactly MaxRows rows but more exist upstream
	rows := make([][]any, 100)
	for i := range rows {
		rows[i] = []any{i}
	}
	res := &Result{Columns: []string{"n"}, Rows: rows, Truncated: true}

	got := FormatResult(res, 50)

	if !strings.Contains(got, "... and at least 51 more rows") {
		t.Errorf("missing open-ended truncation marker: %q", got)
	}
	if !strings.Contains(got, "Total: more than 100 row(s)") {
		t.Errorf("total must not claim an exact count: %q", got)
	}
	if strings.Contains(got, "Total: 100 row(s)") {
		t.Errorf("capped result reported as exact total: %q", got)
	}
}

func TestFormatResultCappedWithinPreview(t *testing.T) {
	// all scanned rows fit in the preview, but the scan itself was capped
	res := &Result{
		Columns:   []string{"n"},
		Rows:      [][]any{{1}, {2}, {3}},
		Truncated: true,
	}

	got := FormatResult(res, 50)

	if !strings.Contains(got, "... and at least 1 more rows") {
		t.Errorf("missing open-ended truncation marker: %q", got)
	}
	if !strings.HasSuffix(got, "Total: more than 3 row(s)") {
		t.Errorf("total must not claim an exact count: %q", got)
	}
}

func TestFormatResultDefaultPreview(t *testing.T) {
	rows := make([][]any, 51)
	for i := range rows {
		rows[i] = []any{i}
	}
	res := &Result{Columns: []string{"n"}, Rows: rows}

	// zero preview falls back to 50
	got := FormatResult(res, 0)
	if !strings.Contains(got, "... and 1 more rows") {
		t.Errorf("default preview not applied: %q", got)
	}
}
