package monitor

// Snapshot is an immutable copy of the monitor's sampled series. Indexes
// align across all slices; Timestamps are seconds since monitoring
// started.
type Snapshot struct {
	Timestamps []float64 `json:"timestamps"`
	CPU        []float64 `json:"cpu_usage"`
	Memory     []float64 `json:"memory_usage"`
	GPU        []float64 `json:"gpu_usage"`
	Power      []float64 `json:"power_usage"`
	Stats      Stats     `json:"stats"`
}

// SeriesStats summarizes one sampled series.
type SeriesStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PowerStats summarizes the power series, including the energy integral
// over the sampled window.
type PowerStats struct {
	Avg float64 `json:"avg"`
	// TotalEnergyKWh integrates watts over the sample timestamps.
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
}

// Stats are the derived summary figures of a snapshot.
type Stats struct {
	CPU    SeriesStats `json:"cpu"`
	Memory SeriesStats `json:"memory"`
	GPU    SeriesStats `json:"gpu"`
	Power  PowerStats  `json:"power"`
}

func seriesStats(values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	s := SeriesStats{Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = sum / float64(len(values))
	return s
}

func deriveStats(s Snapshot) Stats {
	stats := Stats{
		CPU:    seriesStats(s.CPU),
		Memory: seriesStats(s.Memory),
		GPU:    seriesStats(s.GPU),
	}

	if len(s.Power) > 0 {
		sum := 0.0
		for _, v := range s.Power {
			sum += v
		}
		stats.Power.Avg = sum / float64(len(s.Power))

		// Left Riemann sum of watts over seconds, converted to kWh.
		energyWs := 0.0
		for i := 0; i+1 < len(s.Timestamps); i++ {
			energyWs += s.Power[i] * (s.Timestamps[i+1] - s.Timestamps[i])
		}
		stats.Power.TotalEnergyKWh = energyWs / 3.6e6
	}

	return stats
}
