package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/matte-ai/go-matte/models"
)

// PrepareInput fills the engine's persistent input tensor from the BGR
// intermediate image. Steps are fixed by the model contract: swap to the
// model's RGB channel order, resize to the model's declared input size,
// convert to float, subtract the per-channel mean and multiply by the
// per-channel reciprocal scale, and repack pixel-major rows into
// channel-major planes.
//
// Arguments:
//   - bgr: The BGR intermediate image at frame resolution.
//   - desc: The active model's descriptor (normalization constants).
//   - eng: The engine whose input tensor is written.
//
// Returns:
//   - error: An error if the tensor does not match the model's declared size.
func PrepareInput(bgr gocv.Mat, desc models.Descriptor, eng Engine) error {
	size := eng.InputSize()
	data := eng.InputData()
	channelSize := size.X * size.Y
	if len(data) != channelSize*3 {
		return errors.Errorf("input tensor holds %d floats, model input %dx%d needs %d",
			len(data), size.X, size.Y, channelSize*3)
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(bgr, &rgb, gocv.ColorBGRToRGB)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(rgb, &resized, size, 0, 0, gocv.InterpolationLinear)

	floats := gocv.NewMat()
	defer floats.Close()
	resized.ConvertTo(&floats, gocv.MatTypeCV32F)

	values, err := floats.DataPtrFloat32()
	if err != nil {
		return errors.Wrap(err, "reading resized image data")
	}

	// Normalize and repack HWC into CHW planes in one pass.
	for c := 0; c < 3; c++ {
		plane := data[c*channelSize : (c+1)*channelSize]
		mean := desc.Mean[c]
		scale := desc.Scale[c]
		for i := 0; i < channelSize; i++ {
			plane[i] = (values[i*3+c] - mean) * scale
		}
	}
	return nil
}

// PrepareImageInput fills the engine's persistent input tensor from a decoded
// Go image. Same contract as PrepareInput for callers that hold an
// image.Image rather than an intermediate Mat.
func PrepareImageInput(img image.Image, desc models.Descriptor, eng Engine) error {
	size := eng.InputSize()
	data := eng.InputData()
	channelSize := size.X * size.Y
	if len(data) != channelSize*3 {
		return errors.Errorf("input tensor holds %d floats, model input %dx%d needs %d",
			len(data), size.X, size.Y, channelSize*3)
	}

	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	img = resize.Resize(uint(size.X), uint(size.Y), img, resize.Lanczos3)

	i := 0
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			red[i] = (float32(r>>8) - desc.Mean[0]) * desc.Scale[0]
			green[i] = (float32(g>>8) - desc.Mean[1]) * desc.Scale[1]
			blue[i] = (float32(b>>8) - desc.Mean[2]) * desc.Scale[2]
			i++
		}
	}
	return nil
}
