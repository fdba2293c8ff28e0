package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

const mb = 1024 * 1024

// ProcessStats — снимок ресурсов процесса для /api/stats
type ProcessStats struct {
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RSSMB         float64 `json:"rss_mb,omitempty"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"num_gc"`
	Goroutines    int     `json:"goroutines"`
}

// ServerMetrics собирает ProcessStats; proc == nil, если gopsutil не видит процесс
type ServerMetrics struct {
	started time.Time
	proc    *process.Process
}

// NewServerMetrics запоминает время старта
func NewServerMetrics() *ServerMetrics {
	sm := &ServerMetrics{started: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		sm.proc = p
	}
	return sm
}

// Snapshot читает runtime и gopsutil; ошибка CPU не мешает остальным полям
func (sm *ServerMetrics) Snapshot() (ProcessStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	up := time.Since(sm.started)
	st := ProcessStats{
		Uptime:        formatUptime(up),
		UptimeSeconds: int64(up.Seconds()),
		HeapAllocMB:   float64(m.HeapAlloc) / mb,
		SysMB:         float64(m.Sys) / mb,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
	}
	if sm.proc != nil {
		if mem, err := sm.proc.MemoryInfo(); err == nil {
			st.RSSMB = float64(mem.RSS) / mb
		}
	}

	var err error
	st.CPUPercent, err = sm.cpuPercent()
	return st, err
}

func (sm *ServerMetrics) cpuPercent() (float64, error) {
	if sm.proc != nil {
		if p, err := sm.proc.CPUPercent(); err == nil {
			return p, nil
		}
	}
	// системная загрузка, если процесс недоступен
	all, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(all) == 0 {
		return 0, fmt.Errorf("cpu percent: пустой ответ")
	}
	return all[0], nil
}

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		return fmt.Sprintf("%dд %s", days, d)
	}
	return d.String()
}
