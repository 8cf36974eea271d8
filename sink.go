package trialseq

// Sink receives trial-level data from the engine. Implementations
// record (key, value) pairs against the trial being presented; see the
// sinks package for an in-memory recorder and a SQLite-backed one.
//
// The engine treats the sink as best-effort and fire-and-forget: no
// buffering, no retries, no validation. [Handler.AddData] is a pure
// pass-through guarded by a nil check.
type Sink interface {
	// AddData records one datum about the current trial.
	AddData(key string, value any)
}

// EntrySink is implemented by sinks that group recorded data per
// trial. The engine calls NextEntry when it advances, closing out the
// previous trial's record.
type EntrySink interface {
	Sink

	// NextEntry marks the start of a new trial record.
	NextEntry()
}
