// Package models - The closed set of supported segmentation models and their
// per-model constants.
package models

import (
	"github.com/pkg/errors"
)

// Name is the unique identifier of a supported segmentation model.
type Name string

const (
	// SINet is the SINet portrait segmentation model.
	SINet Name = "sinet"
	// MODNet is the MODNet matting model.
	MODNet Name = "modnet"
)

// Polarity states which comparison of the model's output against the
// threshold marks a pixel as foreground. Using the wrong direction inverts
// the mask.
type Polarity int

const (
	// ForegroundAbove marks foreground where output > threshold.
	ForegroundAbove Polarity = iota
	// ForegroundBelow marks foreground where output < threshold.
	ForegroundBelow
)

// Descriptor carries everything model-specific the pipeline needs: the model
// file, the normalization constants applied during preprocessing, and the
// mask polarity applied during postprocessing. Input and output tensor shapes
// are deliberately absent; they are queried from the loaded model, never
// assumed.
type Descriptor struct {
	Name Name
	// File is the model's file name inside the configured model directory.
	File string
	// Mean is the per-channel mean subtracted from the input, in the model's
	// RGB channel order.
	Mean [3]float32
	// Scale is the per-channel reciprocal scale the mean-subtracted input is
	// multiplied by.
	Scale [3]float32
	// Polarity selects the threshold comparison direction for the output.
	Polarity Polarity
}

var descriptors = map[Name]Descriptor{
	SINet: {
		Name: SINet,
		File: "SINet_Softmax_simple.onnx",
		Mean: [3]float32{102.890434, 111.25247, 126.91212},
		Scale: [3]float32{
			1.0 / (62.93292 * 255.0),
			1.0 / (62.82138 * 255.0),
			1.0 / (66.355705 * 255.0),
		},
		Polarity: ForegroundAbove,
	},
	MODNet: {
		Name:     MODNet,
		File:     "modnet_simple.onnx",
		Mean:     [3]float32{127.5, 127.5, 127.5},
		Scale:    [3]float32{1.0 / 127.5, 1.0 / 127.5, 1.0 / 127.5},
		Polarity: ForegroundBelow,
	},
}

// Lookup resolves a model name to its descriptor.
//
// Arguments:
//   - name: The model name to resolve.
//
// Returns:
//   - Descriptor: The model's descriptor.
//   - error: An error if the name is not one of the supported models.
func Lookup(name Name) (Descriptor, error) {
	desc, ok := descriptors[name]
	if !ok {
		return Descriptor{}, errors.Errorf("unsupported model %q", string(name))
	}
	return desc, nil
}

// Names returns the supported model names.
func Names() []Name {
	return []Name{SINet, MODNet}
}
