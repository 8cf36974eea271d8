// Package trialseq is a trial-sequencing and session-state engine for
// behavioral experiments.
//
// It turns a declarative condition table, a repetition count, and an
// ordering policy into a reproducible, single-pass trial sequence: the
// kind of loop a behavioral-experiment runtime drives to present
// stimuli, collect responses, and record data. Rendering, audio, and
// networking are explicitly out of scope — the engine talks to the
// outside world only through a condition [Importer] and a result
// [Sink].
//
// # Quick Start
//
// Sequence three conditions five times, shuffled per repetition,
// recording a response per trial:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/haverstock/trialseq"
//	    "github.com/haverstock/trialseq/sinks"
//	)
//
//	func main() {
//	    sink := sinks.NewMemory()
//
//	    trials, err := trialseq.New(context.Background(), trialseq.Params{
//	        Conditions: []trialseq.Row{
//	            {"word": "red", "congruent": true},
//	            {"word": "green", "congruent": false},
//	            {"word": "blue", "congruent": true},
//	        },
//	        Reps:     5,
//	        Ordering: trialseq.OrderRandom,
//	        Seed:     trialseq.Seed(42),
//	        Sink:     sink,
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    for {
//	        trial, ok := trials.Next()
//	        if !ok {
//	            break // sequence exhausted — normal termination
//	        }
//	        fmt.Println(trial["word"])
//	        trials.AddData("response", collectResponse(trial))
//	    }
//	    trials.SetFinished(true)
//	}
//
// # Condition Tables
//
// Conditions come from an in-memory []Row, an existing [Table], or a
// named resource resolved through an [Importer] (the importers package
// ships YAML and CSV file importers). An absent or empty condition
// list is replaced by a single default row, so a sequence is never
// empty. See [LoadTable] for the exact input contract and [Selection]
// for restricting imported rows.
//
// # Ordering and Reproducibility
//
// [OrderSequential] repeats the table in order; [OrderRandom] shuffles
// each repetition independently; [OrderFullRandom] shuffles all slots
// across repetition boundaries. The whole sequence is generated
// eagerly at construction by a Fisher–Yates shuffle over a PCG
// generator owned by the handler: the same seed always yields the
// same sequence. Without an explicit seed the clock seeds the run, and
// [Handler.SeedUsed] tells you what to pass next time to replay it.
//
// # Cursor and Snapshots
//
// [Handler.Next] advances the cursor one trial at a time and signals
// exhaustion through its second return value — never an error. The
// lookup methods ([Handler.CurrentTrial], [Handler.Trial],
// [Handler.FutureTrial], [Handler.EarlierTrial]) answer questions
// about the table without moving the cursor, returning nil rather
// than failing for anything out of range.
//
// [Handler.Snapshot] captures the cursor position for an outer loop
// construct; [Handler.SetFinished] broadcasts the sequence's
// conclusion to every snapshot taken. See [Snap].
//
// # Recording Data
//
// [Handler.AddData] forwards (key, value) trial data to the attached
// [Sink] — a pure pass-through, no buffering or validation. The sinks
// package provides an in-memory recorder and a SQLite-backed one;
// sinks implementing [EntrySink] additionally get per-trial entry
// boundaries as the cursor advances.
package trialseq
