package importers

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/haverstock/trialseq"
)

// YAMLImporter loads condition tables from YAML files. The document
// must be a list of mappings sharing one field set:
//
//	- word: red
//	  congruent: true
//	- word: green
//	  congruent: false
//
// Field order is taken from the first mapping as written in the file,
// so reports and CSV exports keep the author's column order.
type YAMLImporter struct{}

// NewYAML creates a YAML condition importer.
func NewYAML() *YAMLImporter {
	return &YAMLImporter{}
}

// ImportConditions reads the YAML file at path name and returns the
// selected rows.
func (im *YAMLImporter) ImportConditions(
	ctx context.Context,
	name string,
	selection trialseq.Selection,
) (*trialseq.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read conditions file: %w", err)
	}

	rows, fields, err := decodeYAMLRows(data)
	if err != nil {
		return nil, err
	}

	picked, err := applySelection(rows, selection)
	if err != nil {
		return nil, err
	}
	return trialseq.NewTableWithFields(picked, fields), nil
}

// decodeYAMLRows parses the document into rows, keeping the field
// order of the first mapping. yaml.v3 node traversal is used instead
// of plain unmarshalling because Go maps would lose that order.
func decodeYAMLRows(data []byte) ([]trialseq.Row, []string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse conditions file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf(
			"conditions file must be a list of rows, got %s",
			yamlKindName(root.Kind))
	}

	var (
		rows   []trialseq.Row
		fields []string
	)
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, nil, fmt.Errorf(
				"row %d: expected a mapping, got %s",
				i, yamlKindName(item.Kind))
		}
		row := make(trialseq.Row, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			keyNode, valNode := item.Content[j], item.Content[j+1]
			var value any
			if err := valNode.Decode(&value); err != nil {
				return nil, nil, fmt.Errorf(
					"row %d, field %q: %w", i, keyNode.Value, err)
			}
			row[keyNode.Value] = value
			if i == 0 {
				fields = append(fields, keyNode.Value)
			}
		}
		rows = append(rows, row)
	}
	return rows, fields, nil
}

func yamlKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// applySelection resolves the selection against the decoded rows.
// Shared by the YAML and CSV importers.
func applySelection(
	rows []trialseq.Row,
	selection trialseq.Selection,
) ([]trialseq.Row, error) {
	if selection.IsAll() {
		return rows, nil
	}
	indices, err := selection.Apply(len(rows))
	if err != nil {
		return nil, err
	}
	picked := make([]trialseq.Row, 0, len(indices))
	for _, i := range indices {
		picked = append(picked, rows[i])
	}
	return picked, nil
}

// Compile-time check that YAMLImporter implements trialseq.Importer.
var _ trialseq.Importer = (*YAMLImporter)(nil)
