package importers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haverstock/trialseq"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const stroopYAML = `
- word: red
  congruent: true
  soa: 0.25
- word: green
  congruent: false
  soa: 0.5
- word: blue
  congruent: true
  soa: 0.75
`

func TestYAMLImporter_Import(t *testing.T) {
	path := writeFile(t, "conditions.yaml", stroopYAML)

	table, err := NewYAML().ImportConditions(
		context.Background(), path, trialseq.SelectAll())
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"word", "congruent", "soa"},
		table.Attributes(),
		"field order must follow the file, not map iteration")

	row := table.Row(1)
	assert.Equal(t, "green", row["word"])
	assert.Equal(t, false, row["congruent"])
	assert.Equal(t, 0.5, row["soa"])
}

func TestYAMLImporter_ValueShapes(t *testing.T) {
	path := writeFile(t, "conditions.yaml", `
- label: mixed
  count: 4
  positions: [-1.5, 0, 1.5]
  note: "007"
`)

	table, err := NewYAML().ImportConditions(
		context.Background(), path, trialseq.SelectAll())
	require.NoError(t, err)

	row := table.Row(0)
	assert.Equal(t, 4, row["count"])
	assert.Equal(t, []any{-1.5, 0, 1.5}, row["positions"])
	assert.Equal(t, "007", row["note"],
		"quoted scalars stay strings")
}

func TestYAMLImporter_Selection(t *testing.T) {
	path := writeFile(t, "conditions.yaml", stroopYAML)

	sel, err := trialseq.ParseSelection("2,0")
	require.NoError(t, err)

	table, err := NewYAML().ImportConditions(
		context.Background(), path, sel)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "blue", table.Row(0)["word"])
	assert.Equal(t, "red", table.Row(1)["word"])
}

func TestYAMLImporter_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewYAML().ImportConditions(
			context.Background(),
			filepath.Join(t.TempDir(), "nope.yaml"),
			trialseq.SelectAll())
		assert.Error(t, err)
	})

	t.Run("not a list", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "word: red\n")
		_, err := NewYAML().ImportConditions(
			context.Background(), path, trialseq.SelectAll())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list of rows")
	})

	t.Run("row is not a mapping", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "- red\n- green\n")
		_, err := NewYAML().ImportConditions(
			context.Background(), path, trialseq.SelectAll())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a mapping")
	})

	t.Run("selection out of range", func(t *testing.T) {
		path := writeFile(t, "conditions.yaml", stroopYAML)
		_, err := NewYAML().ImportConditions(
			context.Background(), path, trialseq.SelectIndex(9))
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		path := writeFile(t, "conditions.yaml", stroopYAML)
		_, err := NewYAML().ImportConditions(
			ctx, path, trialseq.SelectAll())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestYAMLImporter_AsHandlerSource(t *testing.T) {
	path := writeFile(t, "conditions.yaml", stroopYAML)

	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: path,
		Importer:   NewYAML(),
		Reps:       2,
		Ordering:   trialseq.OrderSequential,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, h.Total())
	trial, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, "red", trial["word"])
}
