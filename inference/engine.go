// Package inference - ONNX Runtime session adapter and tensor preprocessing.
package inference

import (
	"image"
)

// Engine is the synchronous inference capability the pipeline drives once per
// frame. Input and output buffers are persistent: sized once at model load
// from the model's queried shapes and reused for every run. Preprocessing
// writes into InputData, Run executes the model, postprocessing reads
// OutputData. No call blocks past a single bounded inference.
type Engine interface {
	// InputSize returns the model's expected input spatial size (width,
	// height).
	InputSize() image.Point
	// OutputSize returns the model's native output spatial size (width,
	// height).
	OutputSize() image.Point
	// InputData returns the persistent input tensor buffer in channel-major
	// (channel, row, col) order.
	InputData() []float32
	// OutputData returns the persistent output tensor buffer.
	OutputData() []float32
	// Run executes one inference over the persistent tensors.
	Run() error
	// Close releases the session and tensors.
	Close() error
}
