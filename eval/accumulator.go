package eval

// RunningCounts holds the true/false positive and false negative tallies
// for an evaluation run. Each field is monotonically non-decreasing while
// samples are being accumulated.
type RunningCounts struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Accumulator collects per-sample match results across an evaluation run.
//
// It has a single writer: the driver's sequential loop. The final counts
// do not depend on sample order, but the record sequence does, and that
// order is what curve-based metrics consume.
type Accumulator struct {
	counts  RunningCounts
	records []MatchRecord
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		records: make([]MatchRecord, 0, 256),
	}
}

// AddSample folds one sample's match records and false-negative count into
// the running state. Records are appended in their original order.
func (a *Accumulator) AddSample(records []MatchRecord, falseNegatives int) {
	for _, r := range records {
		if r.Hit {
			a.counts.TruePositives++
		} else {
			a.counts.FalsePositives++
		}
	}
	a.counts.FalseNegatives += falseNegatives
	a.records = append(a.records, records...)
}

// Snapshot returns the current counts and the accumulated record sequence.
// The returned slice is the accumulator's backing storage; callers must
// treat it as read-only.
func (a *Accumulator) Snapshot() (RunningCounts, []MatchRecord) {
	return a.counts, a.records
}
