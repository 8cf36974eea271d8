// Command trialrun steps through a condition file interactively,
// presenting one trial per keypress and recording annotations to an
// in-memory or SQLite sink. It is the development harness for
// condition files: a quick way to check what sequence a given
// ordering, seed, and selection actually produce.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/haverstock/trialseq"
	"github.com/haverstock/trialseq/importers"
	"github.com/haverstock/trialseq/sinks"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type runOptions struct {
	reps      int
	order     string
	seed      string
	selection string
	dbPath    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trialrun",
		Short:         "Step through experiment condition files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newSequenceCmd())
	return root
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <conditions-file>",
		Short: "Present trials interactively, one per keypress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), args[0], opts)
		},
	}
	addSequenceFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.dbPath, "db", "",
		"record trial data into this SQLite file")
	return cmd
}

func newSequenceCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "sequence <conditions-file>",
		Short: "Print the full generated trial sequence and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := buildHandler(cmd.Context(), args[0], opts, nil)
			if err != nil {
				return err
			}
			printSequence(cmd.OutOrStdout(), h)
			return nil
		},
	}
	addSequenceFlags(cmd, opts)
	return cmd
}

func addSequenceFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().IntVar(&opts.reps, "reps", 1, "repetitions of the condition set")
	cmd.Flags().StringVar(&opts.order, "order", "sequential",
		"ordering policy: sequential, random, or fullRandom")
	cmd.Flags().StringVar(&opts.seed, "seed", "",
		"RNG seed for reproducible sequences (empty seeds from the clock)")
	cmd.Flags().StringVar(&opts.selection, "select", "",
		"row selection, e.g. \"3\", \"0,2,5\", or \"0:2:10\"")
}

// importerFor picks an importer by file extension.
func importerFor(path string) (trialseq.Importer, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return importers.NewYAML(), nil
	case ".csv":
		return importers.NewCSV(), nil
	case ".tsv":
		return &importers.CSVImporter{Comma: '\t'}, nil
	default:
		return nil, fmt.Errorf("unsupported conditions format %q", ext)
	}
}

func buildHandler(
	ctx context.Context,
	path string,
	opts *runOptions,
	sink trialseq.Sink,
) (*trialseq.Handler, error) {
	importer, err := importerFor(path)
	if err != nil {
		return nil, err
	}
	ordering, err := trialseq.ParseOrdering(opts.order)
	if err != nil {
		return nil, err
	}

	params := trialseq.Params{
		Conditions: path,
		Importer:   importer,
		Reps:       opts.reps,
		Ordering:   ordering,
		Selection:  opts.selection,
		Sink:       sink,
	}
	if opts.seed != "" {
		seed, err := strconv.ParseUint(opts.seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
		params.Seed = trialseq.Seed(seed)
	}
	return trialseq.New(ctx, params)
}

func printSequence(w io.Writer, h *trialseq.Handler) {
	fmt.Fprintf(w, "%s%d conditions x %d reps (%s, seed %d)%s\n",
		colorDim, h.TableLen(), h.Reps(), h.Ordering(), h.SeedUsed(),
		colorReset)
	h.ForEach(func(trial trialseq.Row) {
		fmt.Fprintf(w, "%3d  rep %d  %s\n",
			h.CurrentN(), h.CurrentRep(), formatTrial(h, trial))
	})
}

func runInteractive(
	ctx context.Context,
	path string,
	opts *runOptions,
) error {
	var (
		sink trialseq.Sink
		mem  = sinks.NewMemory()
	)
	sink = mem
	if opts.dbPath != "" {
		db, err := sinks.OpenSQLite(opts.dbPath, nil)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Printf("%srecording to %s (run %s)%s\n",
			colorDim, opts.dbPath, db.RunID(), colorReset)
		sink = db
	}

	h, err := buildHandler(ctx, path, opts, sink)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s: %d conditions x %d reps = %d trials "+
		"(%s, seed %d)\n",
		colorBold, filepath.Base(path), colorReset,
		h.TableLen(), h.Reps(), h.Total(), h.Ordering(), h.SeedUsed())
	fmt.Printf("%sEnter advances; d key=value records; p peeks ahead; "+
		"q quits%s\n", colorDim, colorReset)

	rl, err := readline.New(colorCyan + "> " + colorReset)
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		done, err := handleLine(h, strings.TrimSpace(line))
		if err != nil {
			fmt.Printf("%s%v%s\n", colorYellow, err, colorReset)
			continue
		}
		if done {
			break
		}
	}

	h.SetFinished(true)
	fmt.Printf("%scompleted %d/%d trials%s\n",
		colorDim, h.Completed(), h.Total(), colorReset)
	if opts.dbPath == "" && len(mem.Entries()) > 0 {
		fmt.Printf("%srecorded entries:%s\n", colorDim, colorReset)
		for i, entry := range mem.Entries() {
			fmt.Printf("  %3d  %v\n", i, entry)
		}
	}
	return nil
}

// handleLine executes one console command. Returning true ends the
// session.
func handleLine(h *trialseq.Handler, line string) (bool, error) {
	switch {
	case line == "q" || line == "quit":
		return true, nil

	case line == "":
		trial, ok := h.Next()
		if !ok {
			fmt.Printf("%ssequence exhausted%s\n", colorGreen, colorReset)
			return true, nil
		}
		fmt.Printf("%strial %d/%d%s  rep %d  %s\n",
			colorBold, h.Completed(), h.Total(), colorReset,
			h.CurrentRep(), formatTrial(h, trial))
		return false, nil

	case strings.HasPrefix(line, "d "):
		kv := strings.SplitN(strings.TrimPrefix(line, "d "), "=", 2)
		if len(kv) != 2 {
			return false, fmt.Errorf("usage: d key=value")
		}
		h.AddData(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
		return false, nil

	case strings.HasPrefix(line, "p"):
		n := 1
		if arg := strings.TrimSpace(strings.TrimPrefix(line, "p")); arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return false, fmt.Errorf("usage: p [offset]")
			}
			n = v
		}
		trial := h.FutureTrial(n)
		if trial == nil {
			fmt.Printf("%sno trial at offset %+d%s\n",
				colorDim, n, colorReset)
			return false, nil
		}
		fmt.Printf("%s%+d:%s %s\n",
			colorDim, n, colorReset, formatTrial(h, trial))
		return false, nil

	case line == "s":
		snap := h.Snapshot()
		fmt.Printf("%srep %d, trial %d, %d done, %d remaining%s\n",
			colorDim, snap.CurrentRep(), snap.CurrentTrialInRep(),
			snap.Completed(), snap.Remaining(), colorReset)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", line)
	}
}

// formatTrial renders a row in attribute order.
func formatTrial(h *trialseq.Handler, trial trialseq.Row) string {
	attrs := h.Attributes()
	if len(attrs) == 0 {
		return fmt.Sprintf("%v", map[string]any(trial))
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%v", a, trial[a]))
	}
	return strings.Join(parts, "  ")
}
