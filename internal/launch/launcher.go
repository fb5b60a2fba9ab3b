// Package launch submits rendered job scripts either as local child
// processes or to the SLURM scheduler, and reports a uniform job record
// either way.
package launch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/cryodl/cryodl/internal/ctxlog"
	"github.com/cryodl/cryodl/internal/slurm"
	"github.com/google/uuid"
)

// Mode selects how a script is executed. The set is closed: every submission
// path flows through the same Submit call and yields the same Record shape.
type Mode int

const (
	// ModeLocal runs the script as a blocking child process.
	ModeLocal Mode = iota
	// ModeBatch hands the script to the scheduler and returns once the
	// submission is acknowledged.
	ModeBatch
)

func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Record describes one launched script. It is ephemeral; nothing persists
// it. JobID is set only for batch submissions, ExitCode only for local runs.
// StdoutPath and StderrPath are the scheduler-side file names the launcher
// expects the job to write; the launcher never creates them.
type Record struct {
	ID         string
	ScriptPath string
	Mode       Mode
	ExitCode   int
	JobID      string
	StdoutPath string
	StderrPath string
	RawOutput  string
}

// ScriptNotFoundError reports a script path that is missing or not
// executable. It is raised before any subprocess is spawned.
type ScriptNotFoundError struct {
	Path string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script %q is missing or not executable", e.Path)
}

// SubmissionParseError reports a submission command that exited successfully
// but whose output did not contain a recognizable job id. The raw scheduler
// output is retained for operator inspection.
type SubmissionParseError struct {
	Output string
}

func (e *SubmissionParseError) Error() string {
	return fmt.Sprintf("could not find a job id in scheduler output: %q", e.Output)
}

// Launcher submits scripts. Local child output streams to outW/errW so the
// operator sees the tool's progress as it runs.
type Launcher struct {
	store     *configstore.Store
	outW      io.Writer
	errW      io.Writer
	submitCmd string
}

// New builds a Launcher over the shared store. Output defaults to the given
// writers; the scheduler submission command is sbatch.
func New(store *configstore.Store, outW, errW io.Writer) *Launcher {
	return &Launcher{store: store, outW: outW, errW: errW, submitCmd: "sbatch"}
}

// SetSubmitCommand replaces the scheduler submission executable. Tests use
// this to stand in a fake sbatch.
func (l *Launcher) SetSubmitCommand(cmd string) { l.submitCmd = cmd }

// Submit launches the script under the given mode. The context only bounds
// the console-side wait: cancelling a local run kills the child, but a batch
// job that has already been acknowledged is never revoked.
func (l *Launcher) Submit(ctx context.Context, scriptPath string, mode Mode) (*Record, error) {
	if err := checkScript(scriptPath); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:         uuid.NewString(),
		ScriptPath: scriptPath,
		Mode:       mode,
	}

	switch mode {
	case ModeLocal:
		return l.runLocal(ctx, rec)
	case ModeBatch:
		return l.runBatch(ctx, rec)
	default:
		return nil, fmt.Errorf("unknown submission mode %d", mode)
	}
}

// runLocal executes the script as a child process and blocks until it exits.
// A non-zero exit code is reported in the record, not swallowed.
func (l *Launcher) runLocal(ctx context.Context, rec *Record) (*Record, error) {
	logger := ctxlog.FromContext(ctx).With("job", rec.ID, "script", rec.ScriptPath)
	l.warnIfOverProvisioned(ctx)

	cmd := exec.CommandContext(ctx, rec.ScriptPath)
	cmd.Stdout = l.outW
	cmd.Stderr = l.errW

	logger.Info("Starting local run.")
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		rec.ExitCode = 0
	case errors.As(err, &exitErr):
		rec.ExitCode = exitErr.ExitCode()
		logger.Warn("Local run exited non-zero.", "exit_code", rec.ExitCode)
	default:
		return nil, fmt.Errorf("running %s: %w", rec.ScriptPath, err)
	}

	logger.Info("Local run finished.", "exit_code", rec.ExitCode)
	return rec, nil
}

// runBatch submits the script to the scheduler and parses the job id from
// the acknowledgement line. Fire and forget: the job's own lifetime is the
// operator's to watch via the computed output files.
func (l *Launcher) runBatch(ctx context.Context, rec *Record) (*Record, error) {
	logger := ctxlog.FromContext(ctx).With("job", rec.ID, "script", rec.ScriptPath)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.submitCmd, rec.ScriptPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("Submitting to scheduler.", "command", l.submitCmd)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\n%s", l.submitCmd, err, stderr.String())
	}

	rec.RawOutput = stdout.String()
	jobID, err := ParseJobID(rec.RawOutput)
	if err != nil {
		return nil, err
	}
	rec.JobID = jobID

	// The job is already running at this point; losing the record over a
	// bad scheduler section would strand the operator without the id. The
	// expected paths are best-effort.
	if params, perr := slurm.New(l.store).Defaults(); perr != nil {
		logger.Warn("Could not resolve scheduler defaults for expected output paths.", "error", perr)
	} else {
		rec.StdoutPath, rec.StderrPath = ExpectedOutputPaths(params, jobID)
	}

	logger.Info("Batch job submitted.",
		"job_id", jobID, "stdout", rec.StdoutPath, "stderr", rec.StderrPath)
	return rec, nil
}

// checkScript fails fast when the script cannot possibly run.
func checkScript(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
		return &ScriptNotFoundError{Path: path}
	}
	return nil
}
