package images

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Direction selects which way a Converter runs.
type Direction int

const (
	// ToIntermediate converts a native frame into the packed BGR intermediate
	// image.
	ToIntermediate Direction = iota
	// FromIntermediate converts the BGR intermediate image back into the
	// native frame layout.
	FromIntermediate
)

// Converter converts frames between one native pixel format and the packed
// BGR intermediate format at a fixed geometry. The pipeline keeps one
// instance per direction and rebuilds both together whenever the observed
// frame geometry changes; construction validates the format so that an
// unsupported stream is detected before any per-frame work.
type Converter struct {
	direction Direction
	width     int
	height    int
	format    PixelFormat
	specs     []PlaneSpec
}

// NewConverter builds a directional converter for the given geometry.
//
// Arguments:
//   - direction: Which way the converter runs.
//   - width: Frame width in pixels.
//   - height: Frame height in pixels.
//   - format: The native pixel format to convert from or to.
//
// Returns:
//   - *Converter: The converter bound to the geometry.
//   - error: An error if the format is unsupported at this geometry.
func NewConverter(direction Direction, width, height int, format PixelFormat) (*Converter, error) {
	specs, err := format.Planes(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "converter init")
	}
	return &Converter{
		direction: direction,
		width:     width,
		height:    height,
		format:    format,
		specs:     specs,
	}, nil
}

// Matches reports whether the converter was built for the given geometry.
func (c *Converter) Matches(width, height int, format PixelFormat) bool {
	return c.width == width && c.height == height && c.format == format
}

// ToBGR converts a native frame into a freshly allocated BGR Mat at frame
// resolution. The caller owns the returned Mat and must Close it.
func (c *Converter) ToBGR(frame *VideoFrame) (gocv.Mat, error) {
	if c.direction != ToIntermediate {
		return gocv.NewMat(), errors.New("converter built for the reverse direction")
	}
	if err := frame.Validate(); err != nil {
		return gocv.NewMat(), errors.Wrap(err, "convert to intermediate")
	}

	buf := gatherPlanes(frame, c.specs)

	switch c.format {
	case FormatBGR:
		return gocv.NewMatFromBytes(c.height, c.width, gocv.MatTypeCV8UC3, buf)
	case FormatBGRA:
		src, err := gocv.NewMatFromBytes(c.height, c.width, gocv.MatTypeCV8UC4, buf)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer src.Close()
		bgr := gocv.NewMat()
		gocv.CvtColor(src, &bgr, gocv.ColorBGRAToBGR)
		return bgr, nil
	case FormatUYVY:
		src, err := gocv.NewMatFromBytes(c.height, c.width, gocv.MatTypeCV8UC2, buf)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer src.Close()
		bgr := gocv.NewMat()
		gocv.CvtColor(src, &bgr, gocv.ColorYUVToBGRUYVY)
		return bgr, nil
	case FormatI420, FormatNV12:
		src, err := gocv.NewMatFromBytes(c.height*3/2, c.width, gocv.MatTypeCV8UC1, buf)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer src.Close()
		code := gocv.ColorYUVToBGRIYUV
		if c.format == FormatNV12 {
			code = gocv.ColorYUVToBGRNV12
		}
		bgr := gocv.NewMat()
		gocv.CvtColor(src, &bgr, code)
		return bgr, nil
	default:
		return gocv.NewMat(), errors.Errorf("unsupported pixel format %q", string(c.format))
	}
}

// FromBGR converts a BGR intermediate image back into the frame's native
// layout, writing into the frame's plane buffers in place.
func (c *Converter) FromBGR(bgr gocv.Mat, frame *VideoFrame) error {
	if c.direction != FromIntermediate {
		return errors.New("converter built for the reverse direction")
	}
	if err := frame.Validate(); err != nil {
		return errors.Wrap(err, "convert from intermediate")
	}
	if bgr.Cols() != c.width || bgr.Rows() != c.height {
		return errors.Errorf("intermediate image is %dx%d, converter built for %dx%d",
			bgr.Cols(), bgr.Rows(), c.width, c.height)
	}

	switch c.format {
	case FormatBGR:
		scatterPlanes(bgr.ToBytes(), frame, c.specs)
		return nil
	case FormatBGRA:
		dst := gocv.NewMat()
		defer dst.Close()
		gocv.CvtColor(bgr, &dst, gocv.ColorBGRToBGRA)
		scatterPlanes(dst.ToBytes(), frame, c.specs)
		return nil
	case FormatUYVY:
		// OpenCV has no BGR-to-packed-4:2:2 conversion, so convert to 4:4:4
		// and pack the chroma pairs ourselves.
		yuv := gocv.NewMat()
		defer yuv.Close()
		gocv.CvtColor(bgr, &yuv, gocv.ColorBGRToYUV)
		scatterPlanes(packUYVY(yuv.ToBytes(), c.width, c.height), frame, c.specs)
		return nil
	case FormatI420, FormatNV12:
		yuv := gocv.NewMat()
		defer yuv.Close()
		gocv.CvtColor(bgr, &yuv, gocv.ColorBGRToYUVI420)
		buf := yuv.ToBytes()
		if c.format == FormatNV12 {
			buf = interleaveChroma(buf, c.width, c.height)
		}
		scatterPlanes(buf, frame, c.specs)
		return nil
	default:
		return errors.Errorf("unsupported pixel format %q", string(c.format))
	}
}
