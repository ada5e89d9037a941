// Package providers - Execution provider backends for the inference session.
package providers

import (
	"runtime"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend represents an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend is the default CPU execution provider.
	CPUBackend Backend = "cpu"
	// CoreMLBackend is the Apple CoreML execution provider.
	CoreMLBackend Backend = "coreml"
	// DirectMLBackend is the Windows DirectML execution provider.
	DirectMLBackend Backend = "directml"
	// CUDABackend is the NVIDIA CUDA execution provider.
	CUDABackend Backend = "cuda"
	// OpenVINOBackend is the Intel OpenVINO execution provider.
	OpenVINOBackend Backend = "openvino"
)

// Accelerated reports whether the backend runs off the default CPU path.
func (b Backend) Accelerated() bool {
	return b != CPUBackend && b != ""
}

// Default returns the preferred backend for this platform: the plain CPU
// provider unless acceleration is requested, in which case the platform's
// native accelerated provider is picked.
//
// Arguments:
//   - accelerated: Whether the caller asked for an accelerated provider.
//
// Returns:
//   - Backend: The backend to configure the session with.
func Default(accelerated bool) Backend {
	if !accelerated {
		return CPUBackend
	}
	switch runtime.GOOS {
	case "windows":
		return DirectMLBackend
	case "darwin":
		return CoreMLBackend
	default:
		return CUDABackend
	}
}

// Apply appends the backend's execution provider to the session options.
// The CPU backend needs no appender; it is ONNX Runtime's built-in default.
//
// Arguments:
//   - options: The session options to append to.
//   - backend: The backend to enable.
//
// Returns:
//   - error: An error if the backend is unknown or the runtime rejects it.
func Apply(options *ort.SessionOptions, backend Backend) error {
	switch backend {
	case CPUBackend, "":
		return nil
	case CoreMLBackend:
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
		return nil
	case DirectMLBackend:
		if err := options.AppendExecutionProviderDirectML(0); err != nil {
			return errors.Wrap(err, "error enabling DirectML")
		}
		return nil
	case CUDABackend:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA provider options")
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
		return nil
	case OpenVINOBackend:
		// See:
		// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
		err := options.AppendExecutionProviderOpenVINO(map[string]string{
			"device_type":    "CPU",
			"precision":      "FP32",
			"num_of_threads": "4",
		})
		if err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
		return nil
	default:
		return errors.Errorf("unsupported execution provider %q", string(backend))
	}
}
