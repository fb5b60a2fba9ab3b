package slurm

import (
	"fmt"
	"strings"
)

// Render produces a submission-script header: the interpreter line followed
// by one #SBATCH directive per configured field, in the fixed order SLURM
// documentation lists them. The directive order never depends on the order
// override fields were supplied. Render is side-effect-free; it does not
// touch the stored defaults.
func (b *Builder) Render(ov Overrides) (string, error) {
	p, err := b.Defaults()
	if err != nil {
		return "", err
	}
	return p.apply(ov).Header(), nil
}

// Header renders the parameter set as header text. The GPU resource line is
// emitted only for a positive GPU count; qos and account only when non-empty.
func (p Params) Header() string {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&sb, "#SBATCH --job-name=%s\n", p.JobName)
	fmt.Fprintf(&sb, "#SBATCH --output=%s\n", p.Output)
	fmt.Fprintf(&sb, "#SBATCH --error=%s\n", p.Error)
	fmt.Fprintf(&sb, "#SBATCH --time=%s\n", p.Time)
	fmt.Fprintf(&sb, "#SBATCH --nodes=%d\n", p.Nodes)
	fmt.Fprintf(&sb, "#SBATCH --ntasks=%d\n", p.Ntasks)
	fmt.Fprintf(&sb, "#SBATCH --cpus-per-task=%d\n", p.CpusPerTask)
	if p.GresGPU > 0 {
		fmt.Fprintf(&sb, "#SBATCH --gres=gpu:%d\n", p.GresGPU)
	}
	fmt.Fprintf(&sb, "#SBATCH --mem=%s\n", p.Mem)
	fmt.Fprintf(&sb, "#SBATCH --partition=%s\n", p.Partition)
	if p.Qos != "" {
		fmt.Fprintf(&sb, "#SBATCH --qos=%s\n", p.Qos)
	}
	if p.Account != "" {
		fmt.Fprintf(&sb, "#SBATCH --account=%s\n", p.Account)
	}
	return sb.String()
}
