package monitor

import "time"

// FPSTracker measures per-frame processing rate for live pipelines. It is
// meant for a single frame loop: call StartFrame before processing and
// EndFrame after, and read the summary once the loop ends. Not safe for
// concurrent use.
type FPSTracker struct {
	programStart time.Time
	frameStart   time.Time
	started      bool

	values     []float64
	timestamps []float64
}

// NewFPSTracker returns a tracker anchored at the current time.
func NewFPSTracker() *FPSTracker {
	return &FPSTracker{programStart: time.Now()}
}

// StartFrame marks the beginning of a frame.
func (t *FPSTracker) StartFrame() {
	t.frameStart = time.Now()
	t.started = true
}

// EndFrame closes the current frame and returns its instantaneous FPS.
// Returns zero when no frame was started or the frame took no measurable
// time.
func (t *FPSTracker) EndFrame() float64 {
	if !t.started {
		return 0
	}
	t.started = false

	frameTime := time.Since(t.frameStart).Seconds()
	fps := 0.0
	if frameTime > 0 {
		fps = 1.0 / frameTime
	}

	t.values = append(t.values, fps)
	t.timestamps = append(t.timestamps, time.Since(t.programStart).Seconds())
	return fps
}

// FPSStats summarizes a tracking session.
type FPSStats struct {
	Frames  int     `json:"frames"`
	Avg     float64 `json:"avg"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// Stats returns the session summary. The zero value is returned when no
// frames were recorded.
func (t *FPSTracker) Stats() FPSStats {
	if len(t.values) == 0 {
		return FPSStats{}
	}

	s := FPSStats{
		Frames:  len(t.values),
		Min:     t.values[0],
		Max:     t.values[0],
		Elapsed: t.timestamps[len(t.timestamps)-1],
	}
	sum := 0.0
	for _, v := range t.values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = sum / float64(len(t.values))
	return s
}
