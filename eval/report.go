package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report is the final snapshot of an evaluation run. It is created once
// after a complete pass and not mutated afterwards; reporting and plotting
// collaborators consume it as-is.
//
// SystemMetrics is an optional payload from a resource-monitor
// collaborator. The engine never inspects it, it only carries it.
type Report struct {
	Metrics          Metrics       `json:"metrics"`
	Counts           RunningCounts `json:"counts"`
	Matches          []MatchRecord `json:"matches"`
	SamplesEvaluated int           `json:"samples_evaluated"`
	SamplesSkipped   int           `json:"samples_skipped,omitempty"`
	Timestamp        time.Time     `json:"timestamp"`
	SystemMetrics    interface{}   `json:"system_metrics,omitempty"`
}

// Save persists the report under outputDir: the full report as JSON plus a
// one-row summary CSV, both with timestamped names.
func (r *Report) Save(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := r.Timestamp.Format("2006-01-02_15-04-05")

	reportFile := filepath.Join(outputDir, fmt.Sprintf("evaluation_%s.json", stamp))
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(reportFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	summaryFile := filepath.Join(outputDir, fmt.Sprintf("evaluation_summary_%s.csv", stamp))
	summary := "Precision,Recall,F1,mAP,FPS,TP,FP,FN,Samples\n" +
		fmt.Sprintf("%.4f,%.4f,%.4f,%.4f,%.2f,%d,%d,%d,%d\n",
			r.Metrics.Precision,
			r.Metrics.Recall,
			r.Metrics.F1,
			r.Metrics.MAP,
			r.Metrics.FPS,
			r.Counts.TruePositives,
			r.Counts.FalsePositives,
			r.Counts.FalseNegatives,
			r.SamplesEvaluated,
		)
	if err := os.WriteFile(summaryFile, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	return nil
}
