package images

import (
	"github.com/pkg/errors"
)

// VideoFrame is a single raw video frame. The pipeline borrows it for the
// duration of one render call and writes the composited result back into the
// same plane buffers. Plane buffers follow the Format's layout and may carry
// stride padding: Linesize[i] >= the plane's payload row bytes.
type VideoFrame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Data     [][]byte
	Linesize []int
}

// NewFrame allocates a tightly packed frame (Linesize == payload row bytes)
// of the given geometry.
//
// Arguments:
//   - width: Frame width in pixels.
//   - height: Frame height in pixels.
//   - format: Pixel format of the frame.
//
// Returns:
//   - *VideoFrame: The allocated frame with zeroed plane buffers.
//   - error: An error if the geometry is invalid for the format.
func NewFrame(width, height int, format PixelFormat) (*VideoFrame, error) {
	specs, err := format.Planes(width, height)
	if err != nil {
		return nil, err
	}

	frame := &VideoFrame{
		Width:    width,
		Height:   height,
		Format:   format,
		Data:     make([][]byte, len(specs)),
		Linesize: make([]int, len(specs)),
	}
	for i, spec := range specs {
		frame.Data[i] = make([]byte, spec.Size())
		frame.Linesize[i] = spec.RowBytes
	}
	return frame, nil
}

// Validate checks that the frame's plane buffers and strides are consistent
// with its declared geometry and format.
func (f *VideoFrame) Validate() error {
	specs, err := f.Format.Planes(f.Width, f.Height)
	if err != nil {
		return err
	}
	if len(f.Data) != len(specs) || len(f.Linesize) != len(specs) {
		return errors.Errorf("format %s expects %d planes, frame has %d buffers and %d strides",
			f.Format, len(specs), len(f.Data), len(f.Linesize))
	}
	for i, spec := range specs {
		if f.Linesize[i] < spec.RowBytes {
			return errors.Errorf("plane %d stride %d below payload row bytes %d", i, f.Linesize[i], spec.RowBytes)
		}
		if need := f.Linesize[i] * (spec.Rows - 1); len(f.Data[i]) < need+spec.RowBytes {
			return errors.Errorf("plane %d buffer holds %d bytes, layout needs %d", i, len(f.Data[i]), need+spec.RowBytes)
		}
	}
	return nil
}
