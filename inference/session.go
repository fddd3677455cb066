package inference

import (
	"context"
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-eval/eval"
)

// Session is an ONNX Runtime detector. It owns the runtime session plus
// its input/output tensors and implements the evaluation engine's
// Detector capability.
//
// A Session must not be shared between concurrent evaluation runs: the
// input tensor is reused between calls and runtime device state is not
// re-entrant.
type Session struct {
	config  Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	mu      sync.Mutex
	closed  bool
}

// NewSession loads an ONNX model and prepares tensors for a YOLO-family
// layout: [1, 3, H, W] input, [1, 84, 8400] output.
//
// Arguments:
//   - config: Model path, input shape, and thresholds.
//
// Returns:
//   - *Session: The ready-to-run detector.
//   - error: An error if the runtime library is missing or session
//     creation fails.
func NewSession(config Config) (*Session, error) {
	libPath := config.LibraryPath
	if libPath == "" {
		libPath = GetSharedLibPath()
	}
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, errors.Wrap(err, "error initializing ORT environment")
	}

	inputShape := ort.NewShape(1, 3, int64(config.InputShape.Y), int64(config.InputShape.X))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputShape := ort.NewShape(1, int64(boxFields+len(YOLOClasses)), 8400)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "error creating ORT session for %s", config.ModelPath)
	}

	return &Session{
		config:  config,
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Detect runs inference on one image and returns the decoded, labeled,
// NMS-filtered detections in source-image coordinates.
func (s *Session) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("session is closed")
	}

	if err := prepareInput(img, s.config.InputShape, s.input.GetData()); err != nil {
		return nil, err
	}

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference run failed")
	}

	bounds := img.Bounds()
	return decodeOutput(s.output.GetData(), s.config, bounds.Dx(), bounds.Dy())
}

// Predict implements eval.Detector, stripping detections down to the
// box/confidence pairs the matcher consumes.
func (s *Session) Predict(ctx context.Context, img image.Image) ([]eval.Prediction, error) {
	detections, err := s.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	predictions := make([]eval.Prediction, len(detections))
	for i, d := range detections {
		predictions[i] = eval.Prediction{Box: d.Box, Confidence: d.Confidence}
	}
	return predictions, nil
}

// Close releases the session and its tensors. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
