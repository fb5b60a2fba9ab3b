package launch

import (
	"context"

	"github.com/cryodl/cryodl/internal/ctxlog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// warnIfOverProvisioned compares the configured runtime limits against what
// the host actually has before a local run. Purely advisory: a warning never
// blocks the launch, because the limits are sized for the cluster and a
// workstation dry-run is a legitimate use.
func (l *Launcher) warnIfOverProvisioned(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	doc := l.store.Document()

	maxThreads, err := doc.GetInt("settings.max_threads", 0)
	if err == nil && maxThreads > 0 {
		if logical, err := cpu.Counts(true); err == nil && maxThreads > logical {
			logger.Warn("Configured max_threads exceeds host CPUs.",
				"max_threads", maxThreads, "host_cpus", logical)
		}
	}

	limitGB, err := doc.GetInt("settings.memory_limit_gb", 0)
	if err == nil && limitGB > 0 {
		if vm, err := mem.VirtualMemory(); err == nil {
			hostGB := int(vm.Total / (1 << 30))
			if limitGB > hostGB {
				logger.Warn("Configured memory_limit_gb exceeds host memory.",
					"memory_limit_gb", limitGB, "host_gb", hostGB)
			}
		}
	}
}
