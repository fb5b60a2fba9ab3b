package launch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newTestLauncher(t *testing.T) (*Launcher, *bytes.Buffer) {
	t.Helper()
	store := configstore.NewInMemory(filepath.Join(t.TempDir(), "config.json"), configstore.DefaultDocument())
	var out bytes.Buffer
	return New(store, &out, &out), &out
}

func writeExecutable(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestSubmitMissingScriptFailsFast(t *testing.T) {
	l, _ := newTestLauncher(t)

	_, err := l.Submit(context.Background(), "/no/such/script.sh", ModeLocal)
	var nfErr *ScriptNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "/no/such/script.sh", nfErr.Path)
}

func TestSubmitNonExecutableScriptFailsFast(t *testing.T) {
	l, _ := newTestLauncher(t)
	path := filepath.Join(t.TempDir(), "plain.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	_, err := l.Submit(context.Background(), path, ModeBatch)
	var nfErr *ScriptNotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestLocalRunStreamsOutputAndReportsExit(t *testing.T) {
	l, out := newTestLauncher(t)

	t.Run("zero exit", func(t *testing.T) {
		out.Reset()
		script := writeExecutable(t, "ok.sh", "echo picked 42 particles\nexit 0\n")
		rec, err := l.Submit(context.Background(), script, ModeLocal)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.ExitCode)
		assert.Empty(t, rec.JobID)
		assert.Contains(t, out.String(), "picked 42 particles")
	})

	t.Run("non-zero exit is reported, not swallowed", func(t *testing.T) {
		out.Reset()
		script := writeExecutable(t, "fail.sh", "echo boom >&2\nexit 3\n")
		rec, err := l.Submit(context.Background(), script, ModeLocal)
		require.NoError(t, err)
		assert.Equal(t, 3, rec.ExitCode)
		assert.Contains(t, out.String(), "boom")
	})
}

func TestBatchSubmissionParsesJobID(t *testing.T) {
	l, _ := newTestLauncher(t)
	script := writeExecutable(t, "job.sh", "exit 0\n")

	fakeSbatch := writeExecutable(t, "sbatch", `echo "Submitted batch job 5976006"`+"\n")
	l.SetSubmitCommand(fakeSbatch)

	rec, err := l.Submit(context.Background(), script, ModeBatch)
	require.NoError(t, err)
	assert.Equal(t, "5976006", rec.JobID)
	assert.Equal(t, "cryodl_job_5976006.out", rec.StdoutPath)
	assert.Equal(t, "cryodl_job_5976006.err", rec.StderrPath)
	assert.Contains(t, rec.RawOutput, "Submitted batch job")
}

func TestBatchSubmissionKeepsRecordOnBrokenSchedulerSection(t *testing.T) {
	doc := configstore.DefaultDocument()
	// A string where the renderer expects it, so Defaults() fails after the
	// scheduler has already acknowledged the job.
	require.NoError(t, doc.Set("scheduler.nodes", cty.StringVal("two")))
	store := configstore.NewInMemory(filepath.Join(t.TempDir(), "config.json"), doc)
	var out bytes.Buffer
	l := New(store, &out, &out)

	script := writeExecutable(t, "job.sh", "exit 0\n")
	fakeSbatch := writeExecutable(t, "sbatch", `echo "Submitted batch job 4242"`+"\n")
	l.SetSubmitCommand(fakeSbatch)

	rec, err := l.Submit(context.Background(), script, ModeBatch)
	require.NoError(t, err)
	assert.Equal(t, "4242", rec.JobID)
	// The expected paths are best-effort and stay empty here.
	assert.Empty(t, rec.StdoutPath)
	assert.Empty(t, rec.StderrPath)
}

func TestBatchSubmissionWithoutAckFails(t *testing.T) {
	l, _ := newTestLauncher(t)
	script := writeExecutable(t, "job.sh", "exit 0\n")

	fakeSbatch := writeExecutable(t, "sbatch", `echo "error: invalid partition"`+"\n")
	l.SetSubmitCommand(fakeSbatch)

	_, err := l.Submit(context.Background(), script, ModeBatch)
	var parseErr *SubmissionParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Output, "error: invalid partition")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "local", ModeLocal.String())
	assert.Equal(t, "batch", ModeBatch.String())
}
