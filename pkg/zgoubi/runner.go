package zgoubi

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/observability"
)

const (
	deckFile   = "zgoubi.dat"
	resultFile = "zgoubi.res"
	trackFile  = "zgoubi.plt"
)

// stderrTail bounds the stderr excerpt carried by a ProcessError.
const stderrTail = 2048

// Runner executes tracer decks in isolated work directories.
//
// The Runner is stateless; multiple goroutines can share one instance.
type Runner struct {
	Executable string      // tracer binary, resolved via PATH when relative
	WorkDir    string      // root under which per-run directories are created
	Workers    int         // RunAll concurrency bound
	Logger     *log.Logger // run diagnostics
}

// NewRunner creates a runner for the given executable. An empty workDir
// falls back to the system temp directory, workers defaults to the CPU
// count and a nil logger discards diagnostics.
func NewRunner(executable, workDir string, workers int, logger *log.Logger) *Runner {
	if executable == "" {
		executable = "zgoubi"
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Executable: executable,
		WorkDir:    workDir,
		Workers:    workers,
		Logger:     logger,
	}
}

// Result captures one completed tracer invocation.
type Result struct {
	Name    string
	WorkDir string
	Stdout  string  // merged stdout and stderr stream
	CPUTime float64 // seconds as reported by the tracer, -1 when absent

	ResultPath string // listing file, empty when the run produced none
	TrackPath  string // stepwise track file, empty when the run produced none

	Elapsed time.Duration
	Err     error // per-run failure, set by RunAll
}

// Run writes the deck into a fresh work directory and executes the tracer
// there. On a non-zero exit the captured output is still returned
// alongside the error so callers can inspect the listing.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	dir := filepath.Join(r.WorkDir, in.Name+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "run %q: creating work directory", in.Name)
	}
	if err := os.WriteFile(filepath.Join(dir, deckFile), []byte(in.Deck), 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "run %q: writing deck", in.Name)
	}

	cmd := exec.CommandContext(ctx, r.Executable)
	cmd.Dir = dir

	observability.Run().OnRunStart(ctx, in.Name)
	start := time.Now()
	out, runErr := cmd.CombinedOutput()
	res := &Result{
		Name:    in.Name,
		WorkDir: dir,
		Stdout:  string(out),
		CPUTime: cpuTime(string(out)),
		Elapsed: time.Since(start),
	}
	if p := filepath.Join(dir, resultFile); fileExists(p) {
		res.ResultPath = p
	}
	if p := filepath.Join(dir, trackFile); fileExists(p) {
		res.TrackPath = p
	}

	var err error
	if runErr != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			err = errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "run %q", in.Name)
		case ctx.Err() != nil:
			err = errors.Wrap(errors.ErrCodeRunFailed, ctx.Err(), "run %q", in.Name)
		default:
			if ee, ok := runErr.(*exec.ExitError); ok {
				perr := &errors.ProcessError{ExitCode: ee.ExitCode(), Stderr: tail(res.Stdout, stderrTail)}
				err = errors.Wrap(errors.ErrCodeRunFailed, perr, "run %q", in.Name)
			} else {
				err = errors.Wrap(errors.ErrCodeRunFailed, runErr, "run %q", in.Name)
			}
		}
	}
	observability.Run().OnRunComplete(ctx, in.Name, res.CPUTime, res.Elapsed, err)
	if err != nil {
		return res, err
	}

	r.Logger.Debug("tracer run complete",
		"name", in.Name,
		"dir", dir,
		"cputime", res.CPUTime,
		"elapsed", res.Elapsed)
	return res, nil
}

// RunAll executes a batch over a bounded worker pool. Results preserve
// input order; failed runs carry their error in Result.Err. The returned
// error summarizes the first failure, if any.
func (r *Runner) RunAll(ctx context.Context, ins []Input) ([]*Result, error) {
	results := make([]*Result, len(ins))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, in := range ins {
		g.Go(func() error {
			res, err := r.Run(gctx, in)
			if res == nil {
				res = &Result{Name: in.Name}
			}
			res.Err = err
			results[i] = res
			// Failures are reported per result; keep the pool draining.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var failed int
	var first error
	for _, res := range results {
		if res != nil && res.Err != nil {
			failed++
			if first == nil {
				first = res.Err
			}
		}
	}
	if failed > 0 {
		return results, errors.Wrap(errors.GetCode(first), first, "%d of %d runs failed", failed, len(ins))
	}
	r.Logger.Info("tracer batch complete", "runs", len(ins), "workers", r.Workers)
	return results, nil
}

var cpuTimeRe = regexp.MustCompile(`[0-9]+\.[0-9]+(?:[eE][-+]?[0-9]+)?`)

// cpuTime extracts the CPU time the tracer prints at the end of a run,
// -1 when no such line exists.
func cpuTime(stdout string) float64 {
	idx := strings.Index(stdout, "CPU time")
	if idx < 0 {
		return -1
	}
	line := stdout[idx:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	m := cpuTimeRe.FindString(line)
	if m == "" {
		return -1
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return -1
	}
	return v
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
