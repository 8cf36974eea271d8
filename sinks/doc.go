// Package sinks provides result-sink implementations for trialseq.
//
// A sink receives the (key, value) trial data the handler forwards
// through [trialseq.Handler.AddData]. Both sinks here implement
// [trialseq.EntrySink], so the handler groups recorded data per trial
// as the cursor advances:
//
//   - [Memory] accumulates entries in process, one row per trial —
//     the experiment data model a session report is built from.
//   - [SQLite] appends data to a SQLite database keyed by run ID and
//     trial number, surviving the process.
package sinks
