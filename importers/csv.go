package importers

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/haverstock/trialseq"
)

// CSVImporter loads condition tables from CSV files. The first record
// is the header and becomes the table's attribute list; every later
// record is one condition row.
//
// Cells are coerced on a best-parse basis: integers, floats, booleans,
// and bracketed numeric arrays ("[1, 2.5, 3]") become typed values,
// everything else stays a string. Empty cells become nil.
type CSVImporter struct {
	// Comma is the field delimiter, ',' when zero. Set to '\t' for
	// TSV files.
	Comma rune
}

// NewCSV creates a CSV condition importer with the default comma
// delimiter.
func NewCSV() *CSVImporter {
	return &CSVImporter{}
}

// ImportConditions reads the CSV file at path name and returns the
// selected rows.
func (im *CSVImporter) ImportConditions(
	ctx context.Context,
	name string,
	selection trialseq.Selection,
) (*trialseq.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open conditions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if im.Comma != 0 {
		r.Comma = im.Comma
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse conditions file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("conditions file %s has no header row", name)
	}

	fields := records[0]
	rows := make([]trialseq.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(trialseq.Row, len(fields))
		for i, field := range fields {
			if i < len(record) {
				row[field] = coerceCell(record[i])
			}
		}
		rows = append(rows, row)
	}

	picked, err := applySelection(rows, selection)
	if err != nil {
		return nil, err
	}
	return trialseq.NewTableWithFields(picked, fields), nil
}

// coerceCell turns a raw CSV cell into a typed value.
func coerceCell(cell string) any {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if arr, ok := parseNumericArray(s); ok {
		return arr
	}
	return s
}

// parseNumericArray parses "[1, 2.5, -3]" into []float64. Anything
// that is not a bracketed list of numbers is left to the caller as a
// plain string.
func parseNumericArray(s string) ([]float64, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []float64{}, true
	}
	parts := strings.Split(inner, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

// Compile-time check that CSVImporter implements trialseq.Importer.
var _ trialseq.Importer = (*CSVImporter)(nil)
