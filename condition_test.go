package trialseq_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haverstock/trialseq"
	"github.com/haverstock/trialseq/internal/tt"
)

func TestLoadTable_DefaultSubstitution(t *testing.T) {
	tests := []struct {
		name       string
		conditions any
	}{
		{name: "nil input", conditions: nil},
		{name: "empty row slice", conditions: []trialseq.Row{}},
		{name: "empty map slice", conditions: []map[string]any{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table, err := trialseq.LoadTable(
				context.Background(), tc.conditions, nil,
				trialseq.SelectAll())
			require.NoError(t, err)

			require.Equal(t, 1, table.Len())
			assert.Empty(t, table.Attributes())
			assert.NotNil(t, table.Row(0))
			assert.Empty(t, table.Row(0))
		})
	}
}

func TestLoadTable_RowSlices(t *testing.T) {
	t.Run("Row slice used as-is", func(t *testing.T) {
		table, err := trialseq.LoadTable(
			context.Background(), abc(), nil, trialseq.SelectAll())
		require.NoError(t, err)
		require.Equal(t, 3, table.Len())
		assert.Equal(t, "B", table.Row(1)["name"])
	})

	t.Run("map slice converted", func(t *testing.T) {
		table, err := trialseq.LoadTable(
			context.Background(),
			[]map[string]any{{"name": "X"}, {"name": "Y"}},
			nil, trialseq.SelectAll())
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		assert.Equal(t, "Y", table.Row(1)["name"])
	})

	t.Run("existing table passed through", func(t *testing.T) {
		orig := trialseq.NewTable(abc())
		table, err := trialseq.LoadTable(
			context.Background(), orig, nil, trialseq.SelectAll())
		require.NoError(t, err)
		assert.Same(t, orig, table)
	})
}

func TestLoadTable_ResourceName(t *testing.T) {
	importer := &tt.StaticImporter{Table: trialseq.NewTable(abc())}

	sel, err := trialseq.ParseSelection("0:2")
	require.NoError(t, err)

	table, err := trialseq.LoadTable(
		context.Background(), "conditions.yaml", importer, sel)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 1, importer.Calls)
	assert.Equal(t, "conditions.yaml", importer.LastName)
	assert.Equal(t, sel, importer.LastSelection)
}

func TestLoadTable_ImportFailure(t *testing.T) {
	cause := errors.New("unsupported file type")
	importer := &tt.FailingImporter{Err: cause}

	_, err := trialseq.LoadTable(
		context.Background(), "conditions.xlsx", importer,
		trialseq.SelectAll())
	require.Error(t, err)

	var ierr *trialseq.ResourceImportError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "conditions.xlsx", ierr.Resource)
	assert.ErrorIs(t, err, cause,
		"the importer's original failure must stay reachable")
	assert.Contains(t, err.Error(), "conditions.xlsx")
}

func TestLoadTable_ResourceNameWithoutImporter(t *testing.T) {
	_, err := trialseq.LoadTable(
		context.Background(), "conditions.csv", nil,
		trialseq.SelectAll())
	require.Error(t, err)

	var ierr *trialseq.ResourceImportError
	require.True(t, errors.As(err, &ierr))
}

func TestLoadTable_UnsupportedShape(t *testing.T) {
	tests := []struct {
		name       string
		conditions any
	}{
		{name: "plain int", conditions: 42},
		{name: "single row", conditions: trialseq.Row{"name": "A"}},
		{name: "string slice", conditions: []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := trialseq.LoadTable(
				context.Background(), tc.conditions, nil,
				trialseq.SelectAll())
			require.Error(t, err)

			var terr *trialseq.InvalidConditionTableError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tc.conditions, terr.Input)
		})
	}
}

func TestNewTable_AttributeOrder(t *testing.T) {
	t.Run("sorted without explicit fields", func(t *testing.T) {
		table := trialseq.NewTable([]trialseq.Row{
			{"word": "red", "ori": 0, "corrAns": "left"},
		})
		assert.Equal(t, []string{"corrAns", "ori", "word"},
			table.Attributes())
	})

	t.Run("explicit field order preserved", func(t *testing.T) {
		table := trialseq.NewTableWithFields(
			[]trialseq.Row{{"word": "red", "ori": 0}},
			[]string{"word", "ori"})
		assert.Equal(t, []string{"word", "ori"}, table.Attributes())
	})
}

func TestTable_RowBounds(t *testing.T) {
	table := trialseq.NewTable(abc())

	assert.Nil(t, table.Row(-1))
	assert.Nil(t, table.Row(3))
	assert.Equal(t, "C", table.Row(2)["name"])
}

func TestRow_Clone(t *testing.T) {
	orig := trialseq.Row{"name": "A", "ori": 90}
	clone := orig.Clone()

	clone["response"] = "left"
	assert.NotContains(t, orig, "response")
	assert.Nil(t, trialseq.Row(nil).Clone())
}
