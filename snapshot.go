package trialseq

// Snap is a point-in-time capture of the cursor, taken with
// [Handler.Snapshot] for external control-flow consumers — typically
// the loop construct a sequence is nested inside. The numeric
// counters are frozen at capture time; [Snap.CurrentTrial] and
// [Snap.Trial] delegate to the owning handler and therefore always
// reflect live table contents; and Finished tracks the handler's
// finished flag even when it is set after the snapshot was taken.
//
// Snapshots are retained by the handler for the finished-flag
// broadcast and never expire during its lifetime.
type Snap struct {
	h *Handler

	repN      int
	trialN    int
	currentN  int
	remaining int
	index     int
	total     int
	tableLen  int
	ran       bool
	finished  bool
}

// Snapshot captures the current cursor position. Taking a snapshot
// never mutates the cursor.
func (h *Handler) Snapshot() *Snap {
	s := &Snap{
		h:         h,
		repN:      h.repN,
		trialN:    h.trialN,
		currentN:  h.currentN,
		remaining: h.remaining,
		index:     h.index,
		total:     h.Total(),
		tableLen:  h.table.Len(),
		ran:       h.Ran(),
		finished:  h.finished,
	}
	h.snapshots = append(h.snapshots, s)
	return s
}

// CurrentRep returns the repetition index at capture time.
func (s *Snap) CurrentRep() int {
	return s.repN
}

// CurrentTrialInRep returns the within-repetition trial index at
// capture time.
func (s *Snap) CurrentTrialInRep() int {
	return s.trialN
}

// CurrentN returns the flat sequence index at capture time, -1 when
// no trial had been produced yet.
func (s *Snap) CurrentN() int {
	return s.currentN
}

// Completed returns the number of trials that had been produced at
// capture time.
func (s *Snap) Completed() int {
	return s.currentN + 1
}

// Remaining returns the number of trials that were left at capture
// time.
func (s *Snap) Remaining() int {
	return s.remaining
}

// Total returns the full sequence length.
func (s *Snap) Total() int {
	return s.total
}

// TableLen returns the number of conditions in the table.
func (s *Snap) TableLen() int {
	return s.tableLen
}

// CurrentIndex returns the condition-table index of the trial that
// was current at capture time.
func (s *Snap) CurrentIndex() int {
	return s.index
}

// Ran reports whether any trial had been produced at capture time.
func (s *Snap) Ran() bool {
	return s.ran
}

// Finished reports the owning handler's finished flag. Unlike the
// counters this is live: [Handler.SetFinished] updates every
// outstanding snapshot.
func (s *Snap) Finished() bool {
	return s.finished
}

// CurrentTrial returns the owning handler's current trial. Live, not
// frozen: it reflects cursor advances made after the capture.
func (s *Snap) CurrentTrial() Row {
	return s.h.CurrentTrial()
}

// Trial returns the owning handler's condition row at table index i,
// nil out of range.
func (s *Snap) Trial(i int) Row {
	return s.h.Trial(i)
}
