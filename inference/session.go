package inference

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/matte-ai/go-matte/inference/providers"
)

var environmentOnce sync.Once

// ensureEnvironment initializes the native ONNX Runtime once per process.
func ensureEnvironment() error {
	var err error
	environmentOnce.Do(func() {
		libPath := providers.GetSharedLibPath()
		if _, statErr := os.Stat(libPath); os.IsNotExist(statErr) {
			err = errors.Errorf("ONNX Runtime library not found at %s", libPath)
			return
		}
		ort.SetSharedLibraryPath(libPath)
		if initErr := ort.InitializeEnvironment(); initErr != nil {
			err = errors.Wrap(initErr, "error initializing ORT environment")
		}
	})
	if err != nil {
		return err
	}
	if !ort.IsInitialized() {
		return errors.New("ORT environment failed to initialize earlier in this process")
	}
	return nil
}

// Session owns one loaded segmentation model together with its persistent
// input and output tensors. Shapes are queried from the model at load time
// and the tensors sized from them, so the buffer-length == product(shape)
// invariant holds for the session's whole lifetime.
type Session struct {
	session     *ort.AdvancedSession
	input       *ort.Tensor[float32]
	output      *ort.Tensor[float32]
	inputShape  ort.Shape
	outputShape ort.Shape
}

// NewSession loads a segmentation model into a fresh inference session.
//
// The model contract is fixed: exactly one named input of shape
// [1, 3, height, width] and one named output of shape [1, 1, height, width].
// Anything else is a configuration error.
//
// Arguments:
//   - modelPath: Path to the ONNX model file.
//   - backend: The execution provider to run the session on.
//
// Returns:
//   - *Session: The ready session with persistent tensors allocated.
//   - error: An error if the file, its shapes, or the provider are unusable.
func NewSession(modelPath string, backend providers.Backend) (*Session, error) {
	if err := ensureEnvironment(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model %s", modelPath)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, errors.Errorf("model %s has %d inputs and %d outputs, expected exactly one of each",
			modelPath, len(inputs), len(outputs))
	}

	inputShape := inputs[0].Dimensions.Clone()
	outputShape := outputs[0].Dimensions.Clone()
	if err := validateShape(inputShape, 3); err != nil {
		return nil, errors.Wrapf(err, "model %s input %s", modelPath, inputs[0].Name)
	}
	if err := validateShape(outputShape, 1); err != nil {
		return nil, errors.Wrapf(err, "model %s output %s", modelPath, outputs[0].Name)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}
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

	options.SetIntraOpNumThreads(0)
	options.SetInterOpNumThreads(0)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll)

	if err := providers.Apply(options, backend); err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "error creating ORT session for %s", modelPath)
	}

	logrus.WithFields(logrus.Fields{
		"model":   modelPath,
		"backend": string(backend),
		"input":   inputShape.String(),
		"output":  outputShape.String(),
	}).Info("inference session loaded")

	return &Session{
		session:     session,
		input:       inputTensor,
		output:      outputTensor,
		inputShape:  inputShape,
		outputShape: outputShape,
	}, nil
}

// validateShape checks the fixed 4D single-batch tensor contract.
func validateShape(shape ort.Shape, channels int64) error {
	if len(shape) != 4 {
		return errors.Errorf("tensor is %dD, expected 4D [batch, channels, height, width]", len(shape))
	}
	if shape[0] != 1 {
		return errors.Errorf("batch dimension is %d, expected 1", shape[0])
	}
	if shape[1] != channels {
		return errors.Errorf("channel dimension is %d, expected %d", shape[1], channels)
	}
	if shape[2] <= 0 || shape[3] <= 0 {
		return errors.Errorf("spatial dimensions %dx%d are not fixed", shape[2], shape[3])
	}
	return nil
}

// InputSize returns the model's expected input spatial size.
func (s *Session) InputSize() image.Point {
	return image.Pt(int(s.inputShape[3]), int(s.inputShape[2]))
}

// OutputSize returns the model's native output spatial size.
func (s *Session) OutputSize() image.Point {
	return image.Pt(int(s.outputShape[3]), int(s.outputShape[2]))
}

// InputData returns the persistent input tensor buffer.
func (s *Session) InputData() []float32 {
	return s.input.GetData()
}

// OutputData returns the persistent output tensor buffer.
func (s *Session) OutputData() []float32 {
	return s.output.GetData()
}

// Run executes one inference over the persistent tensors.
func (s *Session) Run() error {
	return s.session.Run()
}

// Close releases the session and both tensors.
func (s *Session) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			return errors.Wrap(err, "error destroying ORT session")
		}
		s.session = nil
	}
	return nil
}
