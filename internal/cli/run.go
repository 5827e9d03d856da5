package cli

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/beamforge/pkg/archive"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/httputil"
	"github.com/matzehuels/beamforge/pkg/kinematics"
	"github.com/matzehuels/beamforge/pkg/line"
	"github.com/matzehuels/beamforge/pkg/manifest"
	"github.com/matzehuels/beamforge/pkg/runlog"
	"github.com/matzehuels/beamforge/pkg/zgoubi"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	sequence   string // sequence to expand when the manifest defines several
	executable string // tracer binary
	workDir    string // root for per-run work directories; empty uses temp
	workers    int    // parallel runs; 0 uses the CPU count
	scan       string // comma-separated relative momentum offsets
	refresh    bool   // refetch a remote manifest even when cached
	noCache    bool   // disable the manifest cache
	logPath    string // run log path; empty uses the default
	noLog      bool   // skip run log recording
	archive    string // MongoDB URI; empty disables archiving
	plain      bool   // plain log output instead of the progress table
}

// runCommand creates the run command. It renders tracker input decks from a
// manifest and executes them on a local worker pool.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Generate tracker decks and execute them",
		Long: `Run expands a sequence, renders it as a tracker input deck at the
manifest's reference kinematics, and executes the tracker in an
isolated work directory.

With --scan, one deck is generated per relative momentum offset and the
decks run in parallel across the worker pool. Every run is recorded in
the run log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRun(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sequence, "sequence", "s", "", "sequence to expand (required for multi-sequence manifests)")
	cmd.Flags().StringVar(&opts.executable, "executable", "zgoubi", "tracer executable")
	cmd.Flags().StringVar(&opts.workDir, "work-dir", "", "root for per-run work directories (defaults to the system temp dir)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel runs (defaults to the CPU count)")
	cmd.Flags().StringVar(&opts.scan, "scan", "", "relative momentum offsets, e.g. '-0.002,0,0.002'")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch a remote manifest even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the manifest cache")
	cmd.Flags().StringVar(&opts.logPath, "run-log", "", "run log file (defaults to ~/.config/beamforge/runs.jsonl)")
	cmd.Flags().BoolVar(&opts.noLog, "no-run-log", false, "skip run log recording")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "MongoDB URI to archive run records (e.g. mongodb://localhost:27017)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "plain log output instead of the progress table")

	return cmd
}

func (c *CLI) runRun(ctx context.Context, manifestPath string, opts runOpts) error {
	logger := loggerFromContext(ctx)

	data, err := readManifest(ctx, manifestPath, opts.refresh, opts.noCache)
	if err != nil {
		return err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}

	seq := opts.sequence
	if seq == "" {
		names := m.SequenceNames()
		if len(names) != 1 {
			return errors.New(errors.ErrCodeInvalidInput,
				"sequence is required: manifest defines %d sequences", len(names))
		}
		seq = names[0]
	}
	l, err := m.Expand(seq)
	if err != nil {
		return err
	}

	offsets, err := parseOffsets(opts.scan)
	if err != nil {
		return err
	}
	inputs, err := buildInputs(l.Name(), l, m.Kinematics(), offsets)
	if err != nil {
		return err
	}

	runner := zgoubi.NewRunner(opts.executable, opts.workDir, opts.workers, logger)
	logger.Info("starting runs", "line", l.Name(), "runs", len(inputs), "workers", runner.Workers)

	started := time.Now()
	var results []*zgoubi.Result
	var runErr error
	if len(inputs) > 1 && !opts.plain && isTerminal(os.Stderr) {
		results, runErr = runWithProgress(ctx, runner, inputs)
	} else {
		results, runErr = runner.RunAll(ctx, inputs)
	}
	if results == nil {
		return runErr
	}

	recs := runRecords(l.Name(), started, results)
	logPath := ""
	if !opts.noLog {
		logPath, err = appendRunLog(ctx, opts.logPath, recs)
		if err != nil {
			logger.Warn("run log not updated", "err", err)
		}
	}
	if opts.archive != "" {
		if err := archiveRuns(ctx, opts.archive, recs); err != nil {
			return err
		}
		logger.Info("archived runs", "line", l.Name(), "count", len(recs))
	}

	printRunSummary(results, runner.WorkDir, logPath)
	return runErr
}

// readManifest loads manifest bytes from a local file or an http(s) URL.
func readManifest(ctx context.Context, path string, refresh, noCache bool) ([]byte, error) {
	if httputil.IsURL(path) {
		return newFetcher(noCache).Fetch(ctx, path, refresh)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "reading manifest %s", path)
	}
	return data, nil
}

// parseOffsets parses the --scan flag into relative momentum offsets.
func parseOffsets(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	offsets := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid momentum offset %q", p)
		}
		offsets = append(offsets, v)
	}
	return offsets, nil
}

// buildInputs renders one deck at the reference momentum, or one deck per
// scan offset.
func buildInputs(name string, l *line.Line, kin *kinematics.Kinematics, offsets []float64) ([]zgoubi.Input, error) {
	if len(offsets) > 0 {
		return zgoubi.Scan(name, l, kin, offsets)
	}
	deck, err := zgoubi.Render(name, l, kin)
	if err != nil {
		return nil, err
	}
	return []zgoubi.Input{{Name: name, Deck: deck}}, nil
}

// runRecords converts tracker results into run log records. All records
// share the batch start time.
func runRecords(line string, started time.Time, results []*zgoubi.Result) []*runlog.Record {
	recs := make([]*runlog.Record, 0, len(results))
	for _, res := range results {
		rec := &runlog.Record{
			ID:       runlog.NewID(),
			Line:     line,
			Status:   runlog.StatusCompleted,
			Started:  started,
			Duration: res.Elapsed,
			WorkDir:  res.WorkDir,
		}
		if res.Err != nil {
			rec.Status = runlog.StatusFailed
			rec.Error = res.Err.Error()
		}
		recs = append(recs, rec)
	}
	return recs
}

// appendRunLog persists records to the JSONL run log and returns its path.
func appendRunLog(ctx context.Context, path string, recs []*runlog.Record) (string, error) {
	store, err := runlog.NewFileStore(path)
	if err != nil {
		return "", err
	}
	defer store.Close()
	for _, rec := range recs {
		if err := store.Append(ctx, rec); err != nil {
			return "", err
		}
	}
	return store.Path(), nil
}

// archiveRuns stores run records in a MongoDB archive.
func archiveRuns(ctx context.Context, uri string, recs []*runlog.Record) error {
	arch, err := archive.Connect(ctx, archive.Options{URI: uri})
	if err != nil {
		return err
	}
	defer arch.Close(ctx)
	for _, rec := range recs {
		if err := arch.PutRun(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// printRunSummary reports run outcomes, listing every failure.
func printRunSummary(results []*zgoubi.Result, workDir, logPath string) {
	ok := 0
	cpu := 0.0
	for _, res := range results {
		if res.Err == nil {
			ok++
		}
		if res.CPUTime > 0 {
			cpu += res.CPUTime
		}
	}

	printNewline()
	if ok == len(results) {
		printSuccess("Completed %d of %d runs", ok, len(results))
	} else {
		printWarning("Completed %d of %d runs", ok, len(results))
		for _, res := range results {
			if res.Err != nil {
				printError("%s: %v", res.Name, res.Err)
			}
		}
	}
	if cpu > 0 {
		printDetail("total tracker CPU %.2f s", cpu)
	}
	printKeyValue("Work dir", workDir)
	if logPath != "" {
		printKeyValue("Run log", logPath)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
