package monitor

import (
	"bufio"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// gr3dPattern extracts the GPU load percentage from a tegrastats output
// line, e.g. "... GR3D_FREQ 42% ...".
var gr3dPattern = regexp.MustCompile(`GR3D_FREQ (\d+)%`)

// tegrastatsReader streams `tegrastats` output on Jetson-class devices
// and keeps the most recent GPU utilization reading. The stream runs on
// its own goroutine; readers only ever see the latest value.
type tegrastatsReader struct {
	binary string

	mu   sync.RWMutex
	util float64
}

// newTegrastatsReader probes for the tegrastats binary; nil when absent.
func newTegrastatsReader() *tegrastatsReader {
	path, err := exec.LookPath("tegrastats")
	if err != nil {
		return nil
	}
	return &tegrastatsReader{binary: path}
}

// start launches tegrastats and consumes its output until ctx is
// cancelled.
func (r *tegrastatsReader) start(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.binary)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to open tegrastats pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start tegrastats")
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if m := gr3dPattern.FindStringSubmatch(scanner.Text()); m != nil {
				v, _ := strconv.ParseFloat(m[1], 64)
				r.mu.Lock()
				r.util = v
				r.mu.Unlock()
			}
		}
		// Reap the process once the stream closes.
		_ = cmd.Wait()
	}()

	return nil
}

// utilization returns the most recent GPU load percentage.
func (r *tegrastatsReader) utilization() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.util
}

// parseGR3D extracts the GPU load percentage from a single tegrastats
// line. The second return is false when the line carries no GR3D field.
func parseGR3D(line string) (float64, bool) {
	m := gr3dPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// nvidiaSMIPower queries GPU power draw through nvidia-smi.
type nvidiaSMIPower struct {
	binary string
}

// newNvidiaSMIPower probes for the nvidia-smi binary; nil when absent.
func newNvidiaSMIPower() *nvidiaSMIPower {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return nil
	}
	return &nvidiaSMIPower{binary: path}
}

// draw returns the current GPU power draw in watts. The second return is
// false when the query fails or the driver reports no reading.
func (p *nvidiaSMIPower) draw() (float64, bool) {
	out, err := exec.Command(
		p.binary, "--query-gpu=power.draw", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, false
	}
	return parsePowerDraw(string(out))
}

// parsePowerDraw parses nvidia-smi's power.draw CSV output.
func parsePowerDraw(output string) (float64, bool) {
	s := strings.TrimSpace(output)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, false
	}
	// Multi-GPU hosts report one line per device; use the first.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
