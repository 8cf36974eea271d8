package trialseq

import (
	"context"
	"fmt"

	"github.com/haverstock/trialseq/schema"
)

// Params configures a [Handler]. Only Conditions and Reps are
// commonly set; everything else has a working default.
type Params struct {
	// Conditions is the condition source: nil, []Row,
	// []map[string]any, *Table, or a resource name string resolved
	// through Importer. See [LoadTable] for the accepted shapes.
	Conditions any

	// Reps is the number of repetitions of the full condition set.
	// Values below 1 are treated as 1.
	Reps int

	// Ordering selects how condition indices are arranged across
	// repetitions. Empty defaults to [OrderRandom].
	Ordering Ordering

	// Seed makes the generated sequence reproducible. Nil seeds from
	// the clock instead. Use [Seed] to build the pointer inline.
	Seed *uint64

	// Selection restricts which rows are taken from an imported
	// resource. Parsed with [ParseSelection]; empty selects all rows.
	// Only consulted when Conditions is a resource name.
	Selection string

	// Importer resolves a resource-name Conditions value. Required
	// when Conditions is a string.
	Importer Importer

	// Sink receives AddData calls and, when it implements
	// [EntrySink], per-trial entry boundaries as the cursor advances.
	Sink Sink

	// ExtraInfo is session metadata (participant, session, date...)
	// kept alongside the handler for sinks and reports. Never merged
	// into condition rows.
	ExtraInfo Row

	// Time is the clock for default seeding. Defaults to the system
	// clock.
	Time TimeProvider

	// Schema optionally validates every loaded condition row at
	// construction. A row failing validation fails construction with
	// [*InvalidConditionTableError].
	Schema *schema.Schema
}

// Seed returns a pointer to s, for setting [Params].Seed inline.
func Seed(s uint64) *uint64 {
	return &s
}

// Handler is the trial-sequencing engine: it expands a condition
// table, a repetition count, and an [Ordering] into a reproducible
// trial sequence and walks it one trial at a time.
//
// The full sequence matrix is generated eagerly at construction; the
// import of a named resource is the only blocking step and happens
// exactly once, before New returns. After that every operation is
// pure, in-memory, and non-blocking.
//
// A Handler is single-pass: once exhausted it cannot be rewound — run
// the same conditions again by constructing a new Handler, reusing the
// seed if the same sequence is wanted. It is also single-threaded by
// design: one logical experiment-control thread advances it, and no
// locking is provided.
type Handler struct {
	table     *Table
	reps      int
	ordering  Ordering
	seed      uint64
	extraInfo Row
	sink      Sink
	matrix    [][]int

	// Cursor state. Mutated only by Next.
	repN      int // current repetition, 0-based
	trialN    int // within-repetition trial index, -1 before start
	currentN  int // flat index of the current trial, -1 before start
	remaining int
	index     int // condition-table index of the current trial
	current   Row // nil before the first advance and after exhaustion
	exhausted bool

	// Finished is set by the external driver when the surrounding
	// loop construct concludes; it is distinct from cursor
	// exhaustion and is broadcast to every outstanding snapshot.
	finished  bool
	snapshots []*Snap
}

// New constructs a Handler. It loads (or imports) the condition
// table, optionally validates its rows, and generates the full
// sequence matrix. All failures are construction-time fatal:
// [*InvalidConditionTableError], [*ResourceImportError], or
// [*UnknownOrderingError].
//
// The context covers only the resource import; cursor operations
// never block and take no context.
func New(ctx context.Context, p Params) (*Handler, error) {
	ordering := p.Ordering
	if ordering == "" {
		ordering = OrderRandom
	}
	switch ordering {
	case OrderSequential, OrderRandom, OrderFullRandom:
	default:
		return nil, &UnknownOrderingError{Ordering: ordering}
	}

	reps := p.Reps
	if reps < 1 {
		reps = 1
	}

	selection, err := ParseSelection(p.Selection)
	if err != nil {
		return nil, fmt.Errorf("handler construction: %w", err)
	}

	table, err := LoadTable(ctx, p.Conditions, p.Importer, selection)
	if err != nil {
		return nil, err
	}

	if p.Schema != nil {
		for i, row := range table.Rows() {
			if err := p.Schema.Validate(map[string]any(row)); err != nil {
				return nil, &InvalidConditionTableError{
					Input: p.Conditions,
					Err:   fmt.Errorf("row %d: %w", i, err),
				}
			}
		}
	}

	tp := p.Time
	if tp == nil {
		tp = NewDefaultTimeProvider()
	}
	var seed uint64
	if p.Seed != nil {
		seed = *p.Seed
	} else {
		seed = uint64(tp.Now().UnixNano())
	}
	rng := newRNG(seed)

	matrix, err := generateSequence(table.Len(), reps, ordering, rng)
	if err != nil {
		return nil, err
	}

	return &Handler{
		table:     table,
		reps:      reps,
		ordering:  ordering,
		seed:      seed,
		extraInfo: p.ExtraInfo,
		sink:      p.Sink,
		matrix:    matrix,
		trialN:    -1,
		currentN:  -1,
		remaining: table.Len() * reps,
	}, nil
}

// ----------------------------------------------------------------------------
// Cursor
// ----------------------------------------------------------------------------

// Next advances the cursor and returns the next trial. The second
// return value is false exactly when the sequence is exhausted; that
// is the normal terminal signal, not an error, and every later call
// keeps returning it. When the sink groups data per trial (see
// [EntrySink]), advancing closes out the previous trial's entry.
func (h *Handler) Next() (Row, bool) {
	if h.exhausted {
		return nil, false
	}
	if h.remaining == 0 {
		h.exhausted = true
		h.current = nil
		h.nextEntry()
		return nil, false
	}

	if h.current != nil {
		h.nextEntry()
	}

	h.trialN++
	if h.trialN == h.table.Len() {
		h.trialN = 0
		h.repN++
	}
	h.currentN++
	h.remaining--
	h.index = h.matrix[h.repN][h.trialN]
	h.current = h.table.Row(h.index)
	return h.current, true
}

// ForEach drains the cursor, invoking fn once per remaining trial.
// Purely a convenience over [Handler.Next]; it adds no semantics of
// its own.
func (h *Handler) ForEach(fn func(trial Row)) {
	for {
		trial, ok := h.Next()
		if !ok {
			return
		}
		fn(trial)
	}
}

// nextEntry tells an entry-grouping sink that the current trial's
// record is complete.
func (h *Handler) nextEntry() {
	if es, ok := h.sink.(EntrySink); ok {
		es.NextEntry()
	}
}

// ----------------------------------------------------------------------------
// Non-mutating lookups
// ----------------------------------------------------------------------------

// CurrentTrial returns the trial most recently produced by
// [Handler.Next], or nil before the first advance and after
// exhaustion.
func (h *Handler) CurrentTrial() Row {
	return h.current
}

// Trial returns the condition row at table index i, regardless of
// cursor position. Indices outside [0, TableLen()) return nil — an
// absent value, never an error.
func (h *Handler) Trial(i int) Row {
	return h.table.Row(i)
}

// FutureTrial returns the row n positions after the current trial's
// condition-table index, or nil when the offset would go negative or
// n exceeds the remaining trial count. The offset is applied in the
// condition-table index domain, not presentation order.
func (h *Handler) FutureTrial(n int) Row {
	if h.index+n < 0 || n > h.remaining {
		return nil
	}
	return h.table.Row(h.index + n)
}

// EarlierTrial is the symmetric opposite of [Handler.FutureTrial]:
// EarlierTrial(n) looks |n| positions back. The sign of n is ignored.
func (h *Handler) EarlierTrial(n int) Row {
	if n < 0 {
		n = -n
	}
	return h.FutureTrial(-n)
}

// ----------------------------------------------------------------------------
// Counters and metadata
// ----------------------------------------------------------------------------

// Completed returns the number of trials produced so far.
// Completed() + Remaining() == Total() always holds.
func (h *Handler) Completed() int {
	return h.currentN + 1
}

// Remaining returns the number of trials not yet produced.
func (h *Handler) Remaining() int {
	return h.remaining
}

// Total returns reps * table size, the length of the full sequence.
func (h *Handler) Total() int {
	return h.reps * h.table.Len()
}

// CurrentN returns the flat sequence index of the current trial, or
// -1 before the first advance.
func (h *Handler) CurrentN() int {
	return h.currentN
}

// CurrentRep returns the 0-based repetition the cursor is in.
func (h *Handler) CurrentRep() int {
	return h.repN
}

// CurrentTrialInRep returns the 0-based position of the current trial
// within its repetition, or -1 before the first advance.
func (h *Handler) CurrentTrialInRep() int {
	return h.trialN
}

// CurrentIndex returns the condition-table index of the current
// trial, 0 before the first advance.
func (h *Handler) CurrentIndex() int {
	return h.index
}

// Ran reports whether at least one trial has been produced.
func (h *Handler) Ran() bool {
	return h.currentN >= 0
}

// Exhausted reports whether the cursor has produced all Total()
// trials and signaled exhaustion.
func (h *Handler) Exhausted() bool {
	return h.exhausted
}

// Table returns the loaded condition table.
func (h *Handler) Table() *Table {
	return h.table
}

// Reps returns the repetition count.
func (h *Handler) Reps() int {
	return h.reps
}

// TableLen returns the number of conditions in the table.
func (h *Handler) TableLen() int {
	return h.table.Len()
}

// Ordering returns the ordering policy the sequence was generated
// with.
func (h *Handler) Ordering() Ordering {
	return h.ordering
}

// SeedUsed returns the seed the sequence generator ran with — the
// caller's seed, or the clock-derived one when none was given.
// Passing it back via [Params].Seed reproduces the sequence exactly.
func (h *Handler) SeedUsed() uint64 {
	return h.seed
}

// ExtraInfo returns the session metadata given at construction.
func (h *Handler) ExtraInfo() Row {
	return h.extraInfo
}

// Attributes returns the condition field names, in table order.
func (h *Handler) Attributes() []string {
	return h.table.Attributes()
}

// Sequence returns a copy of the generated repetitions x conditions
// index matrix.
func (h *Handler) Sequence() [][]int {
	out := make([][]int, len(h.matrix))
	for i, row := range h.matrix {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// ----------------------------------------------------------------------------
// Result sink
// ----------------------------------------------------------------------------

// AddData forwards one (key, value) trial datum to the attached sink.
// A no-op when no sink is attached.
func (h *Handler) AddData(key string, value any) {
	if h.sink != nil {
		h.sink.AddData(key, value)
	}
}

// ----------------------------------------------------------------------------
// Finished flag and snapshots
// ----------------------------------------------------------------------------

// Finished reports the externally-set finished flag. This is distinct
// from [Handler.Exhausted]: exhaustion is the cursor running out of
// trials, finished is the surrounding loop construct declaring the
// whole sequence concluded.
func (h *Handler) Finished() bool {
	return h.finished
}

// SetFinished sets the finished flag and broadcasts it to every
// snapshot taken so far, so that a snapshot inspected after the fact
// reflects the conclusion.
func (h *Handler) SetFinished(finished bool) {
	h.finished = finished
	for _, s := range h.snapshots {
		s.finished = finished
	}
}
