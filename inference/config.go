// Package inference - ONNX Runtime detector for YOLO-family models:
// session management, CHW preprocessing, and output decoding with NMS.
package inference

import (
	"image"
	"runtime"
)

// Config holds detector session settings.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string `json:"model_path"`
	// LibraryPath overrides the ONNX Runtime shared-library location.
	// Empty means the platform default from GetSharedLibPath.
	LibraryPath string `json:"library_path,omitempty"`
	// InputShape is the model input resolution (width, height).
	InputShape image.Point `json:"input_shape"`
	// ConfidenceThreshold drops anchors below this class score.
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	// NMSThreshold is the IoU above which overlapping detections are
	// suppressed.
	NMSThreshold float32 `json:"nms_threshold"`
}

// DefaultConfig returns settings for a standard 640x640 YOLOv8 export.
func DefaultConfig() Config {
	return Config{
		InputShape:          image.Point{X: 640, Y: 640},
		ConfidenceThreshold: 0.25,
		NMSThreshold:        0.7,
	}
}

// GetSharedLibPath returns the bundled ONNX Runtime shared library for the
// current platform.
func GetSharedLibPath() string {
	if runtime.GOOS == "windows" {
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll"
		}
	}
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.dylib"
		}
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime_amd64.dylib"
		}
	}
	if runtime.GOOS == "linux" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
	return "./third_party/onnxruntime.so"
}
