package images

import (
	"gocv.io/x/gocv"
)

// BackgroundColor is a replacement color in the intermediate image's BGR
// channel order.
type BackgroundColor struct {
	Blue  uint8
	Green uint8
	Red   uint8
}

// BackgroundColorFromRGB unpacks a 24-bit 0xRRGGBB value into BGR channel
// order (low byte is blue).
func BackgroundColorFromRGB(rgb uint32) BackgroundColor {
	return BackgroundColor{
		Blue:  uint8(rgb & 0xff),
		Green: uint8((rgb >> 8) & 0xff),
		Red:   uint8((rgb >> 16) & 0xff),
	}
}

// Scalar returns the color as a gocv scalar in BGR order.
func (c BackgroundColor) Scalar() gocv.Scalar {
	return gocv.NewScalar(float64(c.Blue), float64(c.Green), float64(c.Red), 0)
}
