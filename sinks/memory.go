package sinks

import (
	"sync"

	"github.com/haverstock/trialseq"
)

// Memory is an in-process trial-data recorder. Data added during a
// trial accumulates into a pending entry; the handler's advance
// closes the entry out via NextEntry, one entry per trial, in
// presentation order.
//
// Recording a key twice within one trial overwrites the earlier
// value, matching last-write-wins response collection.
type Memory struct {
	mu      sync.Mutex
	pending trialseq.Row
	entries []trialseq.Row
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{pending: trialseq.Row{}}
}

// AddData records one datum into the pending entry.
func (m *Memory) AddData(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[key] = value
}

// NextEntry closes the pending entry and starts a new one. A trial
// with no recorded data still produces an (empty) entry, keeping
// entries aligned with presentation order.
func (m *Memory) NextEntry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, m.pending)
	m.pending = trialseq.Row{}
}

// Entries returns the closed entries, one per completed trial.
func (m *Memory) Entries() []trialseq.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trialseq.Row(nil), m.entries...)
}

// Pending returns a copy of the not-yet-closed entry.
func (m *Memory) Pending() trialseq.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending.Clone()
}

// Len returns the number of closed entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Compile-time check that Memory implements trialseq.EntrySink.
var _ trialseq.EntrySink = (*Memory)(nil)
