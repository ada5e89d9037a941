package inference

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matte-ai/go-matte/models"
)

// stubEngine is an Engine with plain persistent buffers and no session
// behind it.
type stubEngine struct {
	inputSize  image.Point
	outputSize image.Point
	input      []float32
	output     []float32
}

func newStubEngine(inW, inH, outW, outH int) *stubEngine {
	return &stubEngine{
		inputSize:  image.Pt(inW, inH),
		outputSize: image.Pt(outW, outH),
		input:      make([]float32, inW*inH*3),
		output:     make([]float32, outW*outH),
	}
}

func (s *stubEngine) InputSize() image.Point  { return s.inputSize }
func (s *stubEngine) OutputSize() image.Point { return s.outputSize }
func (s *stubEngine) InputData() []float32    { return s.input }
func (s *stubEngine) OutputData() []float32   { return s.output }
func (s *stubEngine) Run() error              { return nil }
func (s *stubEngine) Close() error            { return nil }

// TestPrepareImageInputNormalization runs a uniform red image through the
// pure-Go preprocessing path and checks normalization and the channel-major
// plane layout: with MODNet constants, 255 maps to 1.0 and 0 maps to -1.0.
func TestPrepareImageInputNormalization(t *testing.T) {
	desc, err := models.Lookup(models.MODNet)
	require.NoError(t, err)

	eng := newStubEngine(8, 8, 8, 8)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	require.NoError(t, PrepareImageInput(img, desc, eng))

	channelSize := 8 * 8
	for i := 0; i < channelSize; i++ {
		assert.InDelta(t, 1.0, float64(eng.input[i]), 1e-4, "red plane index %d", i)
		assert.InDelta(t, -1.0, float64(eng.input[channelSize+i]), 1e-4, "green plane index %d", i)
		assert.InDelta(t, -1.0, float64(eng.input[2*channelSize+i]), 1e-4, "blue plane index %d", i)
	}
}

// TestPrepareImageInputResizes feeds an image larger than the model input
// and expects the whole tensor to be filled from the resized image, never
// cropped.
func TestPrepareImageInputResizes(t *testing.T) {
	desc, err := models.Lookup(models.MODNet)
	require.NoError(t, err)

	eng := newStubEngine(8, 8, 8, 8)
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	require.NoError(t, PrepareImageInput(img, desc, eng))
	for i, v := range eng.input {
		require.InDelta(t, 1.0, float64(v), 1e-4, "tensor index %d", i)
	}
}

// TestPrepareImageInputSizeMismatch ensures a wrongly sized persistent tensor
// fails loudly instead of truncating.
func TestPrepareImageInputSizeMismatch(t *testing.T) {
	desc, err := models.Lookup(models.SINet)
	require.NoError(t, err)

	eng := newStubEngine(8, 8, 8, 8)
	eng.input = eng.input[:100]

	err = PrepareImageInput(image.NewRGBA(image.Rect(0, 0, 8, 8)), desc, eng)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input tensor")
}

// TestPrepareImageInputSINetConstants spot-checks the per-channel SINet
// normalization against hand-computed values for a mid-gray input.
func TestPrepareImageInputSINetConstants(t *testing.T) {
	desc, err := models.Lookup(models.SINet)
	require.NoError(t, err)

	eng := newStubEngine(4, 4, 4, 4)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	require.NoError(t, PrepareImageInput(img, desc, eng))

	channelSize := 4 * 4
	want := [3]float64{
		(128 - 102.890434) / (62.93292 * 255.0),
		(128 - 111.25247) / (62.82138 * 255.0),
		(128 - 126.91212) / (66.355705 * 255.0),
	}
	for c := 0; c < 3; c++ {
		assert.InDelta(t, want[c], float64(eng.input[c*channelSize]), 1e-6, "channel %d", c)
	}
}
