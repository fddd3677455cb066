// Package monitor - Background CPU/GPU/power sampling and frame-rate
// tracking for evaluation runs.
//
// The monitor is an independent producer: it samples on its own cadence
// and exposes results only through immutable snapshot reads, so it can
// never block or be blocked by the evaluation loop.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// estimatedCPUWattsAt100 converts CPU utilization to a rough power figure
// when no direct CPU power source exists. Calibrate per host.
const estimatedCPUWattsAt100 = 50.0

// Options configures the system monitor.
type Options struct {
	// SampleInterval is the time between measurements (default: 500ms).
	SampleInterval time.Duration
}

// SystemMonitor samples CPU, memory, GPU utilization, and power draw in a
// background goroutine.
//
// GPU utilization comes from a tegrastats reader when the binary is
// available (Jetson-class devices); power draw from nvidia-smi when that
// is. Hosts with neither still produce CPU and memory series.
type SystemMonitor struct {
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.RWMutex
	running   bool
	startTime time.Time

	timestamps []float64
	cpuUsage   []float64
	memUsage   []float64
	gpuUsage   []float64
	powerUsage []float64

	gpu   *tegrastatsReader
	power *nvidiaSMIPower
}

// New creates a system monitor. GPU and power sources are probed once,
// here, so a missing tegrastats or nvidia-smi binary costs nothing at
// sample time.
func New(opts Options) *SystemMonitor {
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SystemMonitor{
		interval:  opts.SampleInterval,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		gpu:       newTegrastatsReader(),
		power:     newNvidiaSMIPower(),
	}
}

// Start begins background sampling. Calling Start on a running monitor is
// a no-op.
func (m *SystemMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.startTime = time.Now()

	if m.gpu != nil {
		if err := m.gpu.start(m.ctx); err != nil {
			log.Printf("monitor: GPU utilization unavailable: %v", err)
			m.gpu = nil
		}
	}

	m.wg.Add(1)
	go m.sampleLoop()
}

// Stop halts sampling and waits for the background goroutine to exit.
// Collected series remain readable through Snapshot.
func (m *SystemMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func (m *SystemMonitor) sampleLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample takes one measurement of every source and appends it to the
// series under lock.
func (m *SystemMonitor) sample() {
	cpuPercent := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	memPercent := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	}

	gpuPercent := 0.0
	if m.gpu != nil {
		gpuPercent = m.gpu.utilization()
	}

	// Total power: measured GPU draw plus a CPU estimate derived from
	// utilization.
	power := cpuPercent / 100.0 * estimatedCPUWattsAt100
	if m.power != nil {
		if watts, ok := m.power.draw(); ok {
			power += watts
		}
	}

	m.mu.Lock()
	m.timestamps = append(m.timestamps, time.Since(m.startTime).Seconds())
	m.cpuUsage = append(m.cpuUsage, cpuPercent)
	m.memUsage = append(m.memUsage, memPercent)
	m.gpuUsage = append(m.gpuUsage, gpuPercent)
	m.powerUsage = append(m.powerUsage, power)
	m.mu.Unlock()
}

// Snapshot returns an immutable copy of everything sampled so far plus
// derived statistics. Safe to call at any time, including mid-run.
func (m *SystemMonitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		Timestamps: append([]float64(nil), m.timestamps...),
		CPU:        append([]float64(nil), m.cpuUsage...),
		Memory:     append([]float64(nil), m.memUsage...),
		GPU:        append([]float64(nil), m.gpuUsage...),
		Power:      append([]float64(nil), m.powerUsage...),
	}
	s.Stats = deriveStats(s)
	return s
}
