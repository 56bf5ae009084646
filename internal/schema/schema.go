package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/calldeck/callquery/internal/store"
)

// Descriptor is an immutable snapshot of the database schema plus
// human-readable relationship hints. It is computed once at startup and
// shared by reference; callers that need a fresh view load a new instance.
type Descriptor struct {
	tables        []store.Table
	byLowerName   map[string]store.Table
	relationships []string
	samples       map[string]string
}

// Load introspects the store and builds a descriptor. Relationship hints are
// free-form facts ("calls.employee_id -> employees.employee_id") surfaced in
// prompts, not enforced constraints. One sample row per table is captured to
// show the model what real values look like; sampling failures are ignored.
func Load(ctx context.Context, st store.Store, relationships []string) (*Descriptor, error) {
	tables, err := st.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect schema: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("store has no tables")
	}

	d := New(tables, relationships)
	d.samples = make(map[string]string, len(tables))
	for _, t := range tables {
		res, err := st.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 1", t.Name), store.Options{MaxRows: 1})
		if err != nil || res == nil || len(res.Rows) == 0 {
			continue
		}
		d.samples[strings.ToLower(t.Name)] = formatSample(res.Rows[0])
	}
	return d, nil
}

func formatSample(row []any) string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			cells[i] = "NULL"
		} else {
			cells[i] = fmt.Sprintf("%v", v)
		}
	}
	return "(" + strings.Join(cells, ", ") + ")"
}

// New builds a descriptor from already-known table metadata
func New(tables []store.Table, relationships []string) *Descriptor {
	byName := make(map[string]store.Table, len(tables))
	for _, t := range tables {
		byName[strings.ToLower(t.Name)] = t
	}
	return &Descriptor{
		tables:        tables,
		byLowerName:   byName,
		relationships: relationships,
	}
}

// HasTable reports whether a table exists, matching case-insensitively
func (d *Descriptor) HasTable(name string) bool {
	_, ok := d.byLowerName[strings.ToLower(name)]
	return ok
}

// Tables returns table names in introspection order
func (d *Descriptor) Tables() []string {
	names := make([]string, len(d.tables))
	for i, t := range d.tables {
		names[i] = t.Name
	}
	return names
}

// PromptContext renders the schema as plain text for LLM prompts
func (d *Descriptor) PromptContext() string {
	var b strings.Builder
	b.WriteString("DATABASE SCHEMA:")

	for _, t := range d.tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = fmt.Sprintf("%s (%s)", c.Name, c.DataType)
		}
		b.WriteString(fmt.Sprintf("\n\nTable: %s\n  Columns: %s", t.Name, strings.Join(cols, ", ")))
		if sample, ok := d.samples[strings.ToLower(t.Name)]; ok {
			b.WriteString("\n  Sample: ")
			b.WriteString(sample)
		}
	}

	if len(d.relationships) > 0 {
		b.WriteString("\n\nRELATIONSHIPS:")
		for _, r := range d.relationships {
			b.WriteString("\n- ")
			b.WriteString(r)
		}
	}

	return b.String()
}
