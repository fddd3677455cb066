// Command livefeed runs the detector against a live video source (webcam
// device or stream URL), drawing boxes and an FPS overlay, with resource
// monitoring running in the background. Session stats print on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-eval/inference"
	"github.com/nvr-ai/go-eval/monitor"
)

func main() {
	var (
		source      string
		modelPath   string
		libraryPath string
		confidence  float64
		showWindow  bool
	)
	flag.StringVar(&source, "source", "0", "Video source: device index or stream URL")
	flag.StringVar(&modelPath, "model", "", "Path to ONNX model file")
	flag.StringVar(&libraryPath, "ort-library", "", "Path to ONNX Runtime shared library (default: platform lookup)")
	flag.Float64Var(&confidence, "confidence", 0.25, "Minimum detection confidence")
	flag.BoolVar(&showWindow, "window", true, "Display the annotated feed in a window")
	flag.Parse()

	if modelPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		log.Fatalf("failed to open video source %q: %v", source, err)
	}
	defer capture.Close()

	cfg := inference.DefaultConfig()
	cfg.ModelPath = modelPath
	cfg.LibraryPath = libraryPath
	cfg.ConfidenceThreshold = float32(confidence)

	session, err := inference.NewSession(cfg)
	if err != nil {
		log.Fatalf("failed to create detector session: %v", err)
	}
	defer session.Close()

	sysMonitor := monitor.New(monitor.Options{})
	sysMonitor.Start()
	defer sysMonitor.Stop()

	tracker := monitor.NewFPSTracker()

	var window *gocv.Window
	if showWindow {
		window = gocv.NewWindow("livefeed")
		defer window.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	rgb := gocv.NewMat()
	defer rgb.Close()

	green := color.RGBA{G: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	log.Printf("reading from source %s", source)
	for ctx.Err() == nil {
		if ok := capture.Read(&frame); !ok {
			log.Printf("source %s closed", source)
			break
		}
		if frame.Empty() {
			continue
		}

		tracker.StartFrame()

		gocv.CvtColor(frame, &rgb, gocv.ColorBGRToRGB)
		img, err := rgb.ToImage()
		if err != nil {
			log.Printf("failed to convert frame: %v", err)
			continue
		}

		detections, err := session.Detect(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Fatalf("inference failed: %v", err)
		}

		fps := tracker.EndFrame()

		for _, d := range detections {
			rect := d.Box.ToRect()
			gocv.Rectangle(&frame, rect, green, 2)
			label := fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
			gocv.PutText(&frame, label,
				image.Pt(rect.Min.X, rect.Min.Y-5),
				gocv.FontHersheySimplex, 0.5, green, 1)
		}
		gocv.PutText(&frame, fmt.Sprintf("FPS: %.1f", fps),
			image.Pt(10, 25), gocv.FontHersheySimplex, 0.7, white, 2)

		if window != nil {
			window.IMShow(frame)
			if window.WaitKey(1) == 'q' {
				break
			}
		}
	}

	sysMonitor.Stop()
	printSessionStats(tracker.Stats(), sysMonitor.Snapshot())
}

func printSessionStats(fps monitor.FPSStats, snap monitor.Snapshot) {
	fmt.Println("\nSession Stats:")
	fmt.Printf("Frames:    %d over %.1fs\n", fps.Frames, fps.Elapsed)
	fmt.Printf("FPS:       avg %.2f, min %.2f, max %.2f\n", fps.Avg, fps.Min, fps.Max)
	fmt.Printf("CPU:       avg %.1f%%, max %.1f%%\n", snap.Stats.CPU.Avg, snap.Stats.CPU.Max)
	fmt.Printf("Memory:    avg %.1f%%, max %.1f%%\n", snap.Stats.Memory.Avg, snap.Stats.Memory.Max)
	fmt.Printf("GPU:       avg %.1f%%, max %.1f%%\n", snap.Stats.GPU.Avg, snap.Stats.GPU.Max)
	fmt.Printf("Power:     avg %.1fW, energy %.6f kWh\n",
		snap.Stats.Power.Avg, snap.Stats.Power.TotalEnergyKWh)

	elapsed := 0.0
	if n := len(snap.Timestamps); n > 0 {
		elapsed = snap.Timestamps[n-1]
	}
	fmt.Printf("Monitored: %.1fs (%d samples)\n", elapsed, len(snap.Timestamps))
}
