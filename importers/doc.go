// Package importers provides file-backed condition importers for
// trialseq.
//
// An importer realizes the [trialseq.Importer] contract: given a
// resource name (here, a file path) it returns a condition
// [trialseq.Table], optionally restricted by a [trialseq.Selection].
// Two formats are supported:
//
//   - [YAMLImporter] reads a YAML list of mappings, one mapping per
//     condition row, preserving the field order of the first row.
//   - [CSVImporter] reads a CSV file with a header row, coercing
//     cells to numbers, booleans, and numeric arrays where they parse
//     as such.
//
// Spreadsheet formats (XLSX and friends) are deliberately not
// handled; convert to CSV instead.
package importers
