// Package slurm renders batch submission-script headers from the scheduler
// defaults in the configuration document, overlaid with per-invocation
// overrides.
package slurm

import (
	"context"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/cryodl/cryodl/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Params is one fully-resolved scheduler parameter set. Time and memory are
// opaque strings ("12:00:00", "32G"); the scheduler owns their grammar.
type Params struct {
	JobName     string
	Nodes       int
	Ntasks      int
	CpusPerTask int
	GresGPU     int
	Time        string
	Mem         string
	Partition   string
	Qos         string
	Account     string
	Output      string
	Error       string
}

// Overrides carries the fields a caller explicitly supplied for one render
// or one defaults update. Nil means "keep the default".
type Overrides struct {
	JobName     *string
	Nodes       *int
	Ntasks      *int
	CpusPerTask *int
	GresGPU     *int
	Time        *string
	Mem         *string
	Partition   *string
	Qos         *string
	Account     *string
	Output      *string
	Error       *string
}

// Builder reads scheduler defaults from the shared store and renders headers.
type Builder struct {
	store *configstore.Store
}

// New builds a Builder over the shared store.
func New(store *configstore.Store) *Builder {
	return &Builder{store: store}
}

// Defaults reads the current baseline parameter set from the document.
// Fields absent from the document fall back to the shipped defaults.
func (b *Builder) Defaults() (Params, error) {
	doc := b.store.Document()
	fallback := defaultParams()

	var p Params
	var err error
	if p.JobName, err = doc.GetString("scheduler.job_name", fallback.JobName); err != nil {
		return Params{}, err
	}
	if p.Nodes, err = doc.GetInt("scheduler.nodes", fallback.Nodes); err != nil {
		return Params{}, err
	}
	if p.Ntasks, err = doc.GetInt("scheduler.ntasks", fallback.Ntasks); err != nil {
		return Params{}, err
	}
	if p.CpusPerTask, err = doc.GetInt("scheduler.cpus_per_task", fallback.CpusPerTask); err != nil {
		return Params{}, err
	}
	if p.GresGPU, err = doc.GetInt("scheduler.gres_gpu", fallback.GresGPU); err != nil {
		return Params{}, err
	}
	if p.Time, err = doc.GetString("scheduler.time", fallback.Time); err != nil {
		return Params{}, err
	}
	if p.Mem, err = doc.GetString("scheduler.mem", fallback.Mem); err != nil {
		return Params{}, err
	}
	if p.Partition, err = doc.GetString("scheduler.partition", fallback.Partition); err != nil {
		return Params{}, err
	}
	if p.Qos, err = doc.GetString("scheduler.qos", fallback.Qos); err != nil {
		return Params{}, err
	}
	if p.Account, err = doc.GetString("scheduler.account", fallback.Account); err != nil {
		return Params{}, err
	}
	if p.Output, err = doc.GetString("scheduler.output", fallback.Output); err != nil {
		return Params{}, err
	}
	if p.Error, err = doc.GetString("scheduler.error", fallback.Error); err != nil {
		return Params{}, err
	}
	return p, nil
}

// UpdateDefaults persists the explicitly supplied fields into the document's
// scheduler section and saves. This is the only operation that mutates the
// baseline; Render never does.
func (b *Builder) UpdateDefaults(ctx context.Context, ov Overrides) error {
	doc := b.store.Document()

	setStr := func(key string, v *string) error {
		if v == nil {
			return nil
		}
		return doc.Set("scheduler."+key, cty.StringVal(*v))
	}
	setInt := func(key string, v *int) error {
		if v == nil {
			return nil
		}
		return doc.Set("scheduler."+key, cty.NumberIntVal(int64(*v)))
	}

	if err := setStr("job_name", ov.JobName); err != nil {
		return err
	}
	if err := setInt("nodes", ov.Nodes); err != nil {
		return err
	}
	if err := setInt("ntasks", ov.Ntasks); err != nil {
		return err
	}
	if err := setInt("cpus_per_task", ov.CpusPerTask); err != nil {
		return err
	}
	if err := setInt("gres_gpu", ov.GresGPU); err != nil {
		return err
	}
	if err := setStr("time", ov.Time); err != nil {
		return err
	}
	if err := setStr("mem", ov.Mem); err != nil {
		return err
	}
	if err := setStr("partition", ov.Partition); err != nil {
		return err
	}
	if err := setStr("qos", ov.Qos); err != nil {
		return err
	}
	if err := setStr("account", ov.Account); err != nil {
		return err
	}
	if err := setStr("output", ov.Output); err != nil {
		return err
	}
	if err := setStr("error", ov.Error); err != nil {
		return err
	}

	if err := b.store.Save(ctx); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Scheduler defaults updated.")
	return nil
}

// apply overlays the explicitly supplied override fields on p.
func (p Params) apply(ov Overrides) Params {
	if ov.JobName != nil {
		p.JobName = *ov.JobName
	}
	if ov.Nodes != nil {
		p.Nodes = *ov.Nodes
	}
	if ov.Ntasks != nil {
		p.Ntasks = *ov.Ntasks
	}
	if ov.CpusPerTask != nil {
		p.CpusPerTask = *ov.CpusPerTask
	}
	if ov.GresGPU != nil {
		p.GresGPU = *ov.GresGPU
	}
	if ov.Time != nil {
		p.Time = *ov.Time
	}
	if ov.Mem != nil {
		p.Mem = *ov.Mem
	}
	if ov.Partition != nil {
		p.Partition = *ov.Partition
	}
	if ov.Qos != nil {
		p.Qos = *ov.Qos
	}
	if ov.Account != nil {
		p.Account = *ov.Account
	}
	if ov.Output != nil {
		p.Output = *ov.Output
	}
	if ov.Error != nil {
		p.Error = *ov.Error
	}
	return p
}

// defaultParams mirrors the scheduler section of the default document.
func defaultParams() Params {
	return Params{
		JobName:     "cryodl_job",
		Nodes:       1,
		Ntasks:      1,
		CpusPerTask: 4,
		GresGPU:     1,
		Time:        "12:00:00",
		Mem:         "32G",
		Partition:   "gpu",
		Output:      "%x_%j.out",
		Error:       "%x_%j.err",
	}
}
