package images

import (
	"gocv.io/x/gocv"
)

// CompositeBackground overwrites every pixel the mask marks as background
// with the replacement color, in place. Foreground pixels are untouched.
// This is a hard per-pixel select: any softening of the visible edge comes
// from the mask smoothing stage, not from blending here.
//
// Arguments:
//   - bgr: The BGR intermediate image, modified in place.
//   - background: Single-channel binary mask at frame resolution; nonzero
//     marks background.
//   - color: The replacement color in BGR channel order.
func CompositeBackground(bgr *gocv.Mat, background gocv.Mat, color BackgroundColor) {
	fill := gocv.NewMatWithSizeFromScalar(color.Scalar(), bgr.Rows(), bgr.Cols(), gocv.MatTypeCV8UC3)
	defer fill.Close()
	fill.CopyToWithMask(bgr, background)
}
