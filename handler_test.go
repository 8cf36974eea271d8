package trialseq_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haverstock/trialseq"
	"github.com/haverstock/trialseq/internal/tt"
	"github.com/haverstock/trialseq/schema"
)

// abc is the canonical three-condition table used across these tests.
func abc() []trialseq.Row {
	return []trialseq.Row{
		{"name": "A"},
		{"name": "B"},
		{"name": "C"},
	}
}

func newSequential(t *testing.T, reps int) *trialseq.Handler {
	t.Helper()
	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Reps:       reps,
		Ordering:   trialseq.OrderSequential,
	})
	require.NoError(t, err)
	return h
}

func TestHandler_SequentialOrder(t *testing.T) {
	h := newSequential(t, 5)

	require.Equal(t, 15, h.Total())
	trials := tt.Drain(h)
	require.Len(t, trials, 15)

	want := []string{
		"A", "B", "C", "A", "B", "C", "A", "B", "C",
		"A", "B", "C", "A", "B", "C",
	}
	tt.AssertOrder(t, want, tt.FieldValues(trials, "name"))

	// The 16th advance (and every one after) signals exhaustion.
	for i := 0; i < 3; i++ {
		trial, ok := h.Next()
		assert.Nil(t, trial)
		assert.False(t, ok)
	}
	assert.True(t, h.Exhausted())
	assert.Equal(t, 0, h.Remaining())
	assert.Equal(t, 15, h.Completed())
}

func TestHandler_CounterInvariants(t *testing.T) {
	h := newSequential(t, 5)
	total := h.Total()

	assert.Equal(t, 0, h.Completed())
	assert.Equal(t, total, h.Remaining())
	assert.Equal(t, -1, h.CurrentN())
	assert.False(t, h.Ran())
	assert.Nil(t, h.CurrentTrial())

	for i := 0; i < total; i++ {
		_, ok := h.Next()
		require.True(t, ok)

		assert.Equal(t, i+1, h.Completed())
		assert.Equal(t, total, h.Completed()+h.Remaining(),
			"completed + remaining must equal total after every advance")
		assert.Equal(t, i, h.CurrentN())
		assert.Equal(t, i/3, h.CurrentRep())
		assert.Equal(t, i%3, h.CurrentTrialInRep())
	}
	assert.True(t, h.Ran())
}

func TestHandler_CurrentTrialLifecycle(t *testing.T) {
	h := newSequential(t, 1)

	assert.Nil(t, h.CurrentTrial())

	trial, ok := h.Next()
	require.True(t, ok)
	assert.Equal(t, trial, h.CurrentTrial())
	assert.Equal(t, "A", trial["name"])

	tt.Drain(h)
	assert.Nil(t, h.CurrentTrial(),
		"current trial is cleared once the sequence is exhausted")
}

func TestHandler_TrialLookup(t *testing.T) {
	h := newSequential(t, 2)

	// Absolute lookups never move the cursor and bound-check against
	// the table size, not the sequence length.
	assert.Equal(t, "B", h.Trial(1)["name"])
	assert.Nil(t, h.Trial(-1))
	assert.Nil(t, h.Trial(3))
	assert.Equal(t, 0, h.Completed())
}

func TestHandler_FutureAndEarlierTrial(t *testing.T) {
	h := newSequential(t, 1)

	// Relative lookups offset the current condition-table index.
	h.Next() // A, index 0
	assert.Equal(t, "B", h.FutureTrial(1)["name"])
	assert.Equal(t, "C", h.FutureTrial(2)["name"])
	assert.Nil(t, h.FutureTrial(-1), "offset below table start")

	before := h.Completed()
	assert.Nil(t, h.FutureTrial(3),
		"offset beyond remaining trial count")
	assert.Equal(t, before, h.Completed(),
		"lookup must not advance the cursor")

	h.Next() // B, index 1
	assert.Equal(t, "A", h.EarlierTrial(1)["name"])
	assert.Equal(t, "A", h.EarlierTrial(-1)["name"],
		"sign of the offset is ignored")
	assert.Nil(t, h.EarlierTrial(2))
}

func TestHandler_ForEach(t *testing.T) {
	h := newSequential(t, 2)

	var n int
	h.ForEach(func(trial trialseq.Row) {
		n++
		assert.NotNil(t, trial)
	})
	assert.Equal(t, 6, n)
	assert.True(t, h.Exhausted())
}

func TestHandler_DefaultTable(t *testing.T) {
	type input struct {
		conditions any
	}

	tests := []struct {
		name  string
		input input
	}{
		{name: "nil conditions", input: input{conditions: nil}},
		{name: "empty slice", input: input{conditions: []trialseq.Row{}}},
		{
			name:  "empty table",
			input: input{conditions: trialseq.NewTable(nil)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := trialseq.New(context.Background(), trialseq.Params{
				Conditions: tc.input.conditions,
				Reps:       4,
				Ordering:   trialseq.OrderSequential,
			})
			require.NoError(t, err)

			assert.Equal(t, 1, h.TableLen(),
				"absent conditions substitute a single default row")
			assert.Equal(t, 4, h.Total())
			assert.Empty(t, h.Attributes())
		})
	}
}

func TestHandler_DefaultsRepsAndOrdering(t *testing.T) {
	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, h.Reps())
	assert.Equal(t, trialseq.OrderRandom, h.Ordering())
	assert.Equal(t, 3, h.Total())
}

func TestHandler_UnknownOrdering(t *testing.T) {
	_, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Ordering:   trialseq.Ordering("shuffled"),
	})
	require.Error(t, err)

	var uerr *trialseq.UnknownOrderingError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, trialseq.Ordering("shuffled"), uerr.Ordering)
}

func TestHandler_Attributes(t *testing.T) {
	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: trialseq.NewTableWithFields(
			[]trialseq.Row{
				{"word": "red", "ori": 0, "corrAns": "left"},
				{"word": "blue", "ori": 90, "corrAns": "right"},
			},
			[]string{"word", "ori", "corrAns"},
		),
		Ordering: trialseq.OrderSequential,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"word", "ori", "corrAns"}, h.Attributes())
}

func TestHandler_AddData(t *testing.T) {
	sink := &tt.RecordingSink{}
	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Reps:       2,
		Ordering:   trialseq.OrderSequential,
		Sink:       sink,
	})
	require.NoError(t, err)

	for {
		trial, ok := h.Next()
		if !ok {
			break
		}
		h.AddData("response", trial["name"])
		h.AddData("rt", 0.5)
	}

	assert.Len(t, sink.Pairs, 12)
	assert.Equal(t, "response", sink.Pairs[0].Key)
	assert.Equal(t, "A", sink.Pairs[0].Value)
	assert.Equal(t, 6, sink.NextEntryCalls,
		"one entry boundary per produced trial")
}

func TestHandler_AddDataWithoutSink(t *testing.T) {
	h := newSequential(t, 1)
	h.Next()

	// Pure pass-through with no sink attached: a no-op, not a panic.
	assert.NotPanics(t, func() {
		h.AddData("response", "left")
	})
}

func TestHandler_ExtraInfo(t *testing.T) {
	extra := trialseq.Row{"participant": "p01", "session": 2}
	h, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Ordering:   trialseq.OrderSequential,
		ExtraInfo:  extra,
	})
	require.NoError(t, err)

	assert.Equal(t, extra, h.ExtraInfo())
}

func TestHandler_SchemaValidation(t *testing.T) {
	s := schema.MustCompile(schema.Object(map[string]*schema.Property{
		"name": schema.String("Condition name"),
		"ori":  schema.Number("Orientation").Min(0).Max(360),
	}, "name", "ori"))

	t.Run("valid rows construct", func(t *testing.T) {
		_, err := trialseq.New(context.Background(), trialseq.Params{
			Conditions: []trialseq.Row{
				{"name": "A", "ori": 0.0},
				{"name": "B", "ori": 180.0},
			},
			Ordering: trialseq.OrderSequential,
			Schema:   s,
		})
		assert.NoError(t, err)
	})

	t.Run("invalid row fails construction", func(t *testing.T) {
		_, err := trialseq.New(context.Background(), trialseq.Params{
			Conditions: []trialseq.Row{
				{"name": "A", "ori": 0.0},
				{"name": "B"}, // missing required ori
			},
			Ordering: trialseq.OrderSequential,
			Schema:   s,
		})
		require.Error(t, err)

		var terr *trialseq.InvalidConditionTableError
		require.True(t, errors.As(err, &terr))
		var verr *schema.ValidationError
		assert.True(t, errors.As(err, &verr),
			"cause chain must reach the schema validation failure")
		assert.Contains(t, err.Error(), "row 1")
	})
}

func TestHandler_ClockSeededWithoutExplicitSeed(t *testing.T) {
	clock := trialseq.NewMockTimeProvider(
		time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))

	build := func() *trialseq.Handler {
		h, err := trialseq.New(context.Background(), trialseq.Params{
			Conditions: abc(),
			Reps:       4,
			Ordering:   trialseq.OrderRandom,
			Time:       clock,
		})
		require.NoError(t, err)
		return h
	}

	h1, h2 := build(), build()
	assert.Equal(t, uint64(clock.Now().UnixNano()), h1.SeedUsed())
	assert.Equal(t, h1.Sequence(), h2.Sequence(),
		"same clock reading means same derived seed means same sequence")
}

func TestHandler_SeedUsedReplaysRun(t *testing.T) {
	h1, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Reps:       5,
		Ordering:   trialseq.OrderFullRandom,
	})
	require.NoError(t, err)

	// Re-running with the reported seed reproduces the sequence.
	h2, err := trialseq.New(context.Background(), trialseq.Params{
		Conditions: abc(),
		Reps:       5,
		Ordering:   trialseq.OrderFullRandom,
		Seed:       trialseq.Seed(h1.SeedUsed()),
	})
	require.NoError(t, err)

	assert.Equal(t, h1.Sequence(), h2.Sequence())
	tt.AssertOrder(t,
		tt.FieldValues(tt.Drain(h1), "name"),
		tt.FieldValues(tt.Drain(h2), "name"))
}
