// Package images - Frame formats, plane geometry, and the colorspace converter.
package images

import (
	"github.com/pkg/errors"
)

// PixelFormat tags the raw layout of a VideoFrame's plane buffers.
type PixelFormat string

const (
	// FormatI420 is planar 4:2:0 YUV: a full-size Y plane followed by
	// quarter-size U and V planes.
	FormatI420 PixelFormat = "i420"
	// FormatNV12 is semi-planar 4:2:0 YUV: a full-size Y plane followed by one
	// half-height plane of interleaved UV pairs.
	FormatNV12 PixelFormat = "nv12"
	// FormatUYVY is packed 4:2:2 YUV, two pixels per four bytes (U Y0 V Y1).
	FormatUYVY PixelFormat = "uyvy"
	// FormatBGRA is packed 8-bit BGRA.
	FormatBGRA PixelFormat = "bgra"
	// FormatBGR is packed 8-bit BGR, the pipeline's intermediate working
	// format.
	FormatBGR PixelFormat = "bgr"
)

// PlaneSpec describes one plane of a frame at a given geometry.
type PlaneSpec struct {
	// RowBytes is the number of payload bytes per row, excluding any stride
	// padding the host may add.
	RowBytes int
	// Rows is the number of rows in the plane.
	Rows int
}

// Size returns the payload byte count of the plane.
func (p PlaneSpec) Size() int {
	return p.RowBytes * p.Rows
}

// Planes returns the plane layout of the format at the given frame size.
//
// Arguments:
//   - width: Frame width in pixels.
//   - height: Frame height in pixels.
//
// Returns:
//   - []PlaneSpec: One entry per plane, in buffer order.
//   - error: An error if the format is unknown or the geometry is not
//     representable in it (e.g. odd sizes for subsampled formats).
func (f PixelFormat) Planes(width, height int) ([]PlaneSpec, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid frame size %dx%d", width, height)
	}

	switch f {
	case FormatI420:
		if width%2 != 0 || height%2 != 0 {
			return nil, errors.Errorf("format %s requires even frame size, got %dx%d", f, width, height)
		}
		return []PlaneSpec{
			{RowBytes: width, Rows: height},
			{RowBytes: width / 2, Rows: height / 2},
			{RowBytes: width / 2, Rows: height / 2},
		}, nil
	case FormatNV12:
		if width%2 != 0 || height%2 != 0 {
			return nil, errors.Errorf("format %s requires even frame size, got %dx%d", f, width, height)
		}
		return []PlaneSpec{
			{RowBytes: width, Rows: height},
			{RowBytes: width, Rows: height / 2},
		}, nil
	case FormatUYVY:
		if width%2 != 0 {
			return nil, errors.Errorf("format %s requires even width, got %d", f, width)
		}
		return []PlaneSpec{{RowBytes: width * 2, Rows: height}}, nil
	case FormatBGRA:
		return []PlaneSpec{{RowBytes: width * 4, Rows: height}}, nil
	case FormatBGR:
		return []PlaneSpec{{RowBytes: width * 3, Rows: height}}, nil
	default:
		return nil, errors.Errorf("unsupported pixel format %q", string(f))
	}
}
