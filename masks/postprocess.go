// Package masks - Background mask postprocessing: thresholding with per-model
// polarity, contour-area filtering, frame-scale resize, and edge smoothing.
package masks

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/matte-ai/go-matte/models"
)

// Params are the tunable refinement knobs, read-only during a render.
type Params struct {
	// Threshold is the score cutoff in [0,1] compared per the model's
	// polarity.
	Threshold float32
	// ContourFilter is the fraction of total mask area in (0,1) below which a
	// connected region is discarded; values outside (0,1) disable filtering.
	ContourFilter float32
	// SmoothContour in (0,1] scales the box-smoothing kernel (100*value
	// pixels); 0 disables smoothing.
	SmoothContour float32
}

// Background converts the model's raw output tensor into the binary
// background mask at the model's native output size. 255 marks background,
// i.e. pixels the compositor will overwrite. The comparison direction comes
// from the model's polarity: a model scoring foreground high marks background
// where the score stays at or below the threshold, and vice versa.
//
// Arguments:
//   - output: The flat output tensor values.
//   - size: The model's native output spatial size (width, height).
//   - desc: The active model's descriptor.
//   - threshold: The score cutoff.
//
// Returns:
//   - gocv.Mat: Single-channel 8-bit binary mask at native scale. Caller
//     closes.
//   - error: An error if the tensor does not cover the native mask size.
func Background(output []float32, size image.Point, desc models.Descriptor, threshold float32) (gocv.Mat, error) {
	if len(output) != size.X*size.Y {
		return gocv.NewMat(), errors.Errorf("output tensor holds %d values, native mask %dx%d needs %d",
			len(output), size.X, size.Y, size.X*size.Y)
	}

	raw := gocv.NewMatWithSize(size.Y, size.X, gocv.MatTypeCV32F)
	defer raw.Close()
	values, err := raw.DataPtrFloat32()
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "mapping native mask buffer")
	}
	copy(values, output)

	ttype := gocv.ThresholdBinaryInv
	if desc.Polarity == models.ForegroundBelow {
		ttype = gocv.ThresholdBinary
	}
	thresholded := gocv.NewMat()
	defer thresholded.Close()
	gocv.Threshold(raw, &thresholded, threshold, 255, ttype)

	mask := gocv.NewMat()
	thresholded.ConvertTo(&mask, gocv.MatTypeCV8U)
	return mask, nil
}

// FilterRegions removes small disconnected background regions in place.
// Every connected region whose pixel area is at or below
// total*fraction is discarded; the survivors are redrawn filled solid, so
// legitimate large regions never shrink. Refiltering an already-filtered mask
// with the same fraction yields the same mask.
func FilterRegions(mask *gocv.Mat, fraction float32) {
	if fraction <= 0 || fraction >= 1 {
		return
	}

	contours := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	areaThreshold := float64(mask.Total()) * float64(fraction)
	kept := gocv.NewPointsVector()
	defer kept.Close()
	for i := 0; i < contours.Size(); i++ {
		if gocv.ContourArea(contours.At(i)) > areaThreshold {
			kept.Append(contours.At(i))
		}
	}

	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	gocv.DrawContours(mask, kept, -1, color.RGBA{R: 255, G: 255, B: 255}, -1)
}

// ToFrameScale resizes the native background mask to frame resolution and
// optionally softens the edge with a box blur of kernel size 100*smooth
// pixels. Both the linear resize and the blur introduce intermediate gray
// values, so the result is re-binarized at mid-range of the 8-bit depth
// before returning; the frame-scale mask is always strictly binary.
//
// Arguments:
//   - native: The binary mask at the model's native output size.
//   - frameSize: The target frame size (width, height).
//   - smooth: Smoothing strength in [0,1]; 0 disables the blur.
//
// Returns:
//   - gocv.Mat: Binary mask at frame resolution. Caller closes.
func ToFrameScale(native gocv.Mat, frameSize image.Point, smooth float32) gocv.Mat {
	frame := gocv.NewMat()
	gocv.Resize(native, &frame, frameSize, 0, 0, gocv.InterpolationLinear)

	if smooth > 0 {
		k := int(math32.Round(100 * smooth))
		if k < 1 {
			k = 1
		}
		gocv.Blur(frame, &frame, image.Pt(k, k))
	}

	gocv.Threshold(frame, &frame, 127, 255, gocv.ThresholdBinary)
	return frame
}

// Postprocess runs the full refinement chain: threshold at native scale,
// contour-area filtering at native scale, then resize and smoothing at frame
// scale. All state is derived from the arguments; nothing persists between
// frames.
func Postprocess(
	output []float32,
	nativeSize image.Point,
	desc models.Descriptor,
	params Params,
	frameSize image.Point,
) (gocv.Mat, error) {
	mask, err := Background(output, nativeSize, desc, params.Threshold)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer mask.Close()

	FilterRegions(&mask, params.ContourFilter)

	return ToFrameScale(mask, frameSize, params.SmoothContour), nil
}
