// Command evaluate runs an ONNX object detector over a KITTI-layout
// dataset and reports precision, recall, F1, mAP, and throughput.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/nvr-ai/go-eval/dataset"
	"github.com/nvr-ai/go-eval/eval"
	"github.com/nvr-ai/go-eval/inference"
	"github.com/nvr-ai/go-eval/monitor"
)

const (
	// DefaultOutputDir is where evaluation reports are written.
	DefaultOutputDir = "performance"
	// DefaultSampleInterval is the resource-monitor cadence.
	DefaultSampleInterval = 500 * time.Millisecond
)

func main() {
	var (
		imageDir       string
		labelDir       string
		modelPath      string
		libraryPath    string
		iouThreshold   float64
		confThreshold  float64
		outputDir      string
		sampleInterval time.Duration
	)
	flag.StringVar(&imageDir, "images", "", "Directory of dataset .png images")
	flag.StringVar(&labelDir, "labels", "", "Directory of KITTI label files")
	flag.StringVar(&modelPath, "model", "", "Path to ONNX model file")
	flag.StringVar(&libraryPath, "ort-library", "", "Path to ONNX Runtime shared library (default: platform lookup)")
	flag.Float64Var(&iouThreshold, "iou", 0.5, "IoU threshold for matching predictions to ground truth")
	flag.Float64Var(&confThreshold, "confidence", 0.3, "Minimum confidence for a prediction to be evaluated")
	flag.StringVar(&outputDir, "output-dir", DefaultOutputDir, "Output directory for evaluation reports")
	flag.DurationVar(&sampleInterval, "sample-interval", DefaultSampleInterval, "Resource sampling interval")
	flag.Parse()

	if imageDir == "" || labelDir == "" || modelPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ds, err := dataset.OpenKITTI(imageDir, labelDir)
	if err != nil {
		log.Fatalf("failed to open dataset: %v", err)
	}
	log.Printf("dataset: %d samples", ds.Len())

	cfg := inference.DefaultConfig()
	cfg.ModelPath = modelPath
	cfg.LibraryPath = libraryPath
	cfg.InputShape = image.Point{X: 640, Y: 640}

	session, err := inference.NewSession(cfg)
	if err != nil {
		log.Fatalf("failed to create detector session: %v", err)
	}
	defer session.Close()

	sysMonitor := monitor.New(monitor.Options{SampleInterval: sampleInterval})
	sysMonitor.Start()
	defer sysMonitor.Stop()

	log.Printf("starting evaluation (iou=%.2f, confidence=%.2f)", iouThreshold, confThreshold)
	report, err := eval.Evaluate(context.Background(), ds, session, eval.Options{
		IoUThreshold:        float32(iouThreshold),
		ConfidenceThreshold: float32(confThreshold),
	})
	if err != nil {
		log.Fatalf("evaluation failed: %v", err)
	}

	sysMonitor.Stop()
	snapshot := sysMonitor.Snapshot()
	report.SystemMetrics = snapshot

	fmt.Println("\nEvaluation Results:")
	fmt.Printf("Precision: %.4f\n", report.Metrics.Precision)
	fmt.Printf("Recall:    %.4f\n", report.Metrics.Recall)
	fmt.Printf("F1 Score:  %.4f\n", report.Metrics.F1)
	fmt.Printf("mAP:       %.4f\n", report.Metrics.MAP)
	fmt.Printf("FPS:       %.2f\n", report.Metrics.FPS)
	fmt.Printf("TP=%d FP=%d FN=%d (%d samples, %d skipped)\n",
		report.Counts.TruePositives,
		report.Counts.FalsePositives,
		report.Counts.FalseNegatives,
		report.SamplesEvaluated,
		report.SamplesSkipped,
	)

	fmt.Println("\nSystem Utilization:")
	fmt.Printf("CPU avg/min/max: %.1f%% / %.1f%% / %.1f%%\n",
		snapshot.Stats.CPU.Avg, snapshot.Stats.CPU.Min, snapshot.Stats.CPU.Max)
	fmt.Printf("GPU avg/min/max: %.1f%% / %.1f%% / %.1f%%\n",
		snapshot.Stats.GPU.Avg, snapshot.Stats.GPU.Min, snapshot.Stats.GPU.Max)
	fmt.Printf("Power avg: %.1fW, total energy: %.6f kWh\n",
		snapshot.Stats.Power.Avg, snapshot.Stats.Power.TotalEnergyKWh)

	if err := report.Save(outputDir); err != nil {
		log.Fatalf("failed to save report: %v", err)
	}
	log.Printf("report saved to %s", outputDir)
}
