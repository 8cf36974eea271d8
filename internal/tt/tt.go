// Package tt provides shared test mocks and assertion helpers for the
// trialseq test suites.
package tt

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"

	"github.com/haverstock/trialseq"
)

// -----------------------------------------------------------------------------
// Mock Collaborators
// -----------------------------------------------------------------------------

// Pair is one recorded (key, value) datum.
type Pair struct {
	Key   string
	Value any
}

// RecordingSink captures everything the handler forwards to its sink,
// including entry boundaries.
type RecordingSink struct {
	Pairs          []Pair
	NextEntryCalls int
}

// AddData records the datum.
func (s *RecordingSink) AddData(key string, value any) {
	s.Pairs = append(s.Pairs, Pair{Key: key, Value: value})
}

// NextEntry counts the entry boundary.
func (s *RecordingSink) NextEntry() {
	s.NextEntryCalls++
}

// Keys returns the recorded keys in order.
func (s *RecordingSink) Keys() []string {
	keys := make([]string, len(s.Pairs))
	for i, p := range s.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// StaticImporter returns a fixed table for any resource name and
// records how it was called.
type StaticImporter struct {
	Table *trialseq.Table

	Calls         int
	LastName      string
	LastSelection trialseq.Selection
}

// ImportConditions returns the fixed table.
func (im *StaticImporter) ImportConditions(
	_ context.Context,
	name string,
	selection trialseq.Selection,
) (*trialseq.Table, error) {
	im.Calls++
	im.LastName = name
	im.LastSelection = selection
	return im.Table, nil
}

// FailingImporter fails every import with a fixed error.
type FailingImporter struct {
	Err error
}

// ImportConditions returns the fixed error.
func (im *FailingImporter) ImportConditions(
	context.Context, string, trialseq.Selection,
) (*trialseq.Table, error) {
	return nil, im.Err
}

// Compile-time checks for the mock collaborators.
var (
	_ trialseq.EntrySink = (*RecordingSink)(nil)
	_ trialseq.Importer  = (*StaticImporter)(nil)
	_ trialseq.Importer  = (*FailingImporter)(nil)
)

// -----------------------------------------------------------------------------
// Sequence Assertion Helpers
// -----------------------------------------------------------------------------

// FieldValues extracts field as a string from each row, preserving
// order. Handy for asserting presentation order against a short
// name-per-condition table.
func FieldValues(rows []trialseq.Row, field string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("%v", r[field])
	}
	return out
}

// Drain advances the handler to exhaustion and returns every produced
// trial in presentation order.
func Drain(h *trialseq.Handler) []trialseq.Row {
	var out []trialseq.Row
	h.ForEach(func(trial trialseq.Row) {
		out = append(out, trial)
	})
	return out
}

// AssertOrder asserts that got matches want element-for-element,
// rendering a unified diff of the two sequences on mismatch so long
// trial orders stay readable in failure output.
func AssertOrder(t *testing.T, want, got []string) {
	t.Helper()

	if assert.ObjectsAreEqual(want, got) {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.Join(want, "\n")),
		B:        difflib.SplitLines(strings.Join(got, "\n")),
		FromFile: "expected order",
		ToFile:   "actual order",
		Context:  3,
	})
	if err != nil {
		diff = fmt.Sprintf("(diff failed: %v)", err)
	}
	t.Errorf("trial order mismatch:\n%s", diff)
}

// AssertPermutation asserts that got contains exactly the elements of
// want, in any order.
func AssertPermutation(t *testing.T, want, got []string) {
	t.Helper()
	assert.ElementsMatch(t, want, got, "not a permutation")
}
