package metrics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SysHealth is a point-in-time snapshot of the process and its host.
// Host percentages stay 0 when the platform does not report them.
type SysHealth struct {
	AllocMB       uint64
	SysMB         uint64
	NumGC         uint32
	Goroutines    int
	DBSize        string
	HostMemory    int
	DataDiskUsage int
}

// GetSysHealth collects real-time health data. dbPath is the metrics
// database file; a missing file reports as "0 B".
func GetSysHealth(dbPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var size int64
	if info, err := os.Stat(dbPath); err == nil {
		size = info.Size()
	}

	h := SysHealth{
		AllocMB:    m.Alloc / 1024 / 1024,
		SysMB:      m.Sys / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DBSize:     formatBytes(size),
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		h.HostMemory = int(math.Round(vmem.UsedPercent))
	}
	if du, err := disk.Usage(filepath.Dir(dbPath)); err == nil {
		h.DataDiskUsage = int(math.Round(du.UsedPercent))
	}
	return h
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
