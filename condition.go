package trialseq

import (
	"context"
	"sort"
)

// Row is a single experimental condition: a mapping from field name to
// value. Values are scalars (string, float64, int, bool) or arrays of
// numbers, depending on what the condition source delivered.
//
// Rows are mutable containers of extra keys: consumers such as response
// collectors are free to annotate the current row with fields like
// "response" or "rt" after it has been presented. The engine itself
// never mutates the fields a row was loaded with.
type Row map[string]any

// Clone returns a shallow copy of the row. Values are shared.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered, non-empty list of condition rows sharing one
// field set. A Table is fixed once constructed: the generated trial
// sequence indexes into its positions, so it is never resized.
//
// Use [NewTable] when field order does not matter (attribute names are
// sorted for determinism) and [NewTableWithFields] when the source
// knows the original column order, e.g. the header row of a CSV file.
type Table struct {
	rows   []Row
	fields []string
}

// NewTable builds a Table from rows. An empty or nil slice is replaced
// by a single default row with no fields, so the resulting table is
// always non-empty; a sequence over it presents one (empty) trial per
// repetition. Attribute order is the sorted key set of the first row.
func NewTable(rows []Row) *Table {
	if len(rows) == 0 {
		return defaultTable()
	}
	fields := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return &Table{rows: rows, fields: fields}
}

// NewTableWithFields builds a Table from rows with an explicit
// attribute order. Importers that know the source column order (CSV
// headers, YAML document order) use this to preserve it.
func NewTableWithFields(rows []Row, fields []string) *Table {
	if len(rows) == 0 {
		return defaultTable()
	}
	return &Table{rows: rows, fields: fields}
}

// defaultTable is the substitution for an absent or empty condition
// list: one row, no fields.
func defaultTable() *Table {
	return &Table{rows: []Row{{}}}
}

// Len returns the number of condition rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the row at index i, or nil when i is outside
// [0, Len()). Out-of-range access is an absent value, not an error.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// Rows returns the backing row slice. Callers must not resize it.
func (t *Table) Rows() []Row {
	return t.rows
}

// Attributes returns the ordered field names of the table, derived
// from its first row. Empty for the default single-row table.
func (t *Table) Attributes() []string {
	return t.fields
}

// LoadTable normalizes the polymorphic condition input accepted by
// [New] into a Table:
//
//   - nil: one default row with no fields
//   - []Row or []map[string]any: used as-is (empty gets the same
//     default substitution); rows are assumed to share a uniform field
//     set — no cross-row validation is performed
//   - *Table: used as-is
//   - string: treated as a resource name and delegated to the
//     importer; failures surface as [*ResourceImportError]
//
// Any other input shape fails with [*InvalidConditionTableError].
func LoadTable(
	ctx context.Context,
	conditions any,
	importer Importer,
	selection Selection,
) (*Table, error) {
	switch c := conditions.(type) {
	case nil:
		return defaultTable(), nil
	case []Row:
		return NewTable(c), nil
	case []map[string]any:
		rows := make([]Row, len(c))
		for i, m := range c {
			rows[i] = Row(m)
		}
		return NewTable(rows), nil
	case *Table:
		if c == nil || c.Len() == 0 {
			return defaultTable(), nil
		}
		return c, nil
	case string:
		if importer == nil {
			return nil, &ResourceImportError{
				Resource: c,
				Err:      errNoImporter,
			}
		}
		table, err := importer.ImportConditions(ctx, c, selection)
		if err != nil {
			return nil, &ResourceImportError{Resource: c, Err: err}
		}
		if table == nil || table.Len() == 0 {
			return defaultTable(), nil
		}
		return table, nil
	default:
		return nil, &InvalidConditionTableError{Input: conditions}
	}
}
