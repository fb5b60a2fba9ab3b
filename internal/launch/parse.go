package launch

import (
	"regexp"
	"strings"

	"github.com/cryodl/cryodl/internal/slurm"
)

// ackPattern is the scheduler's submission acknowledgement. sbatch prints
// exactly one such line on success.
var ackPattern = regexp.MustCompile(`Submitted batch job (\d+)`)

// ParseJobID extracts the job id from scheduler submission output. Output
// without the acknowledgement phrase yields a *SubmissionParseError carrying
// the raw text; the submission itself may still have failed server-side, so
// the operator needs to see what the scheduler actually said.
func ParseJobID(output string) (string, error) {
	m := ackPattern.FindStringSubmatch(output)
	if m == nil {
		return "", &SubmissionParseError{Output: output}
	}
	return m[1], nil
}

// ExpectedOutputPaths substitutes the job name (%x) and job id (%j) into the
// configured stdout/stderr patterns. The files themselves are created by the
// scheduler on the execution host, never by the console.
func ExpectedOutputPaths(p slurm.Params, jobID string) (stdout, stderr string) {
	sub := func(pattern string) string {
		s := strings.ReplaceAll(pattern, "%x", p.JobName)
		return strings.ReplaceAll(s, "%j", jobID)
	}
	return sub(p.Output), sub(p.Error)
}
