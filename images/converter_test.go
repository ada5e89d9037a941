package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConverterMatches checks the geometry bookkeeping the pipeline uses to
// decide when both converters must be rebuilt.
func TestConverterMatches(t *testing.T) {
	c, err := NewConverter(ToIntermediate, 64, 48, FormatI420)
	require.NoError(t, err)

	assert.True(t, c.Matches(64, 48, FormatI420))
	assert.False(t, c.Matches(128, 48, FormatI420), "width change invalidates")
	assert.False(t, c.Matches(64, 96, FormatI420), "height change invalidates")
	assert.False(t, c.Matches(64, 48, FormatNV12), "format change invalidates")
}

// TestNewConverterUnsupported ensures construction fails up front for
// unusable formats so the frame loop can pass through instead of crashing.
func TestNewConverterUnsupported(t *testing.T) {
	_, err := NewConverter(ToIntermediate, 64, 48, PixelFormat("v210"))
	assert.Error(t, err)

	_, err = NewConverter(FromIntermediate, 63, 48, FormatI420)
	assert.Error(t, err, "odd width is unrepresentable in 4:2:0")
}

// TestConverterDirectionMisuse ensures calling a converter against its built
// direction is reported instead of producing garbage.
func TestConverterDirectionMisuse(t *testing.T) {
	to, err := NewConverter(ToIntermediate, 8, 8, FormatBGR)
	require.NoError(t, err)
	from, err := NewConverter(FromIntermediate, 8, 8, FormatBGR)
	require.NoError(t, err)

	frame, err := NewFrame(8, 8, FormatBGR)
	require.NoError(t, err)

	bgr, err := to.ToBGR(frame)
	require.NoError(t, err)
	defer bgr.Close()

	_, err = from.ToBGR(frame)
	assert.Error(t, err)
	assert.Error(t, to.FromBGR(bgr, frame))
}

// TestRoundTripBGR checks the identity round trip for the packed BGR native
// format: native to intermediate and back must reproduce the exact bytes.
func TestRoundTripBGR(t *testing.T) {
	frame, err := NewFrame(16, 8, FormatBGR)
	require.NoError(t, err)
	for i := range frame.Data[0] {
		frame.Data[0][i] = byte(i * 7)
	}
	src := append([]byte(nil), frame.Data[0]...)

	to, err := NewConverter(ToIntermediate, 16, 8, FormatBGR)
	require.NoError(t, err)
	from, err := NewConverter(FromIntermediate, 16, 8, FormatBGR)
	require.NoError(t, err)

	bgr, err := to.ToBGR(frame)
	require.NoError(t, err)
	defer bgr.Close()

	require.NoError(t, from.FromBGR(bgr, frame))
	assert.Equal(t, src, frame.Data[0], "BGR round trip is lossless")
}

// TestRoundTripBGRA checks the BGRA round trip. Color channels must be exact;
// alpha comes back opaque.
func TestRoundTripBGRA(t *testing.T) {
	frame, err := NewFrame(8, 8, FormatBGRA)
	require.NoError(t, err)
	for i := range frame.Data[0] {
		if i%4 == 3 {
			frame.Data[0][i] = 255
		} else {
			frame.Data[0][i] = byte(i * 3)
		}
	}
	src := append([]byte(nil), frame.Data[0]...)

	to, err := NewConverter(ToIntermediate, 8, 8, FormatBGRA)
	require.NoError(t, err)
	from, err := NewConverter(FromIntermediate, 8, 8, FormatBGRA)
	require.NoError(t, err)

	bgr, err := to.ToBGR(frame)
	require.NoError(t, err)
	defer bgr.Close()

	require.NoError(t, from.FromBGR(bgr, frame))
	assert.Equal(t, src, frame.Data[0])
}

// TestRoundTripYUV checks the identity round trip for the planar and
// semi-planar YUV formats on a uniform frame, within conversion tolerance.
func TestRoundTripYUV(t *testing.T) {
	for _, format := range []PixelFormat{FormatI420, FormatNV12, FormatUYVY} {
		t.Run(string(format), func(t *testing.T) {
			frame, err := NewFrame(32, 16, format)
			require.NoError(t, err)
			// Mid-gray with neutral chroma stays comfortably inside every
			// YUV range convention.
			for p := range frame.Data {
				fill := byte(128)
				if p == 0 && format != FormatUYVY {
					fill = 120 // Y plane
				}
				for i := range frame.Data[p] {
					frame.Data[p][i] = fill
				}
			}
			src := make([][]byte, len(frame.Data))
			for p := range frame.Data {
				src[p] = append([]byte(nil), frame.Data[p]...)
			}

			to, err := NewConverter(ToIntermediate, 32, 16, format)
			require.NoError(t, err)
			from, err := NewConverter(FromIntermediate, 32, 16, format)
			require.NoError(t, err)

			bgr, err := to.ToBGR(frame)
			require.NoError(t, err)
			defer bgr.Close()
			assert.Equal(t, 16, bgr.Rows())
			assert.Equal(t, 32, bgr.Cols())

			require.NoError(t, from.FromBGR(bgr, frame))
			for p := range frame.Data {
				for i := range frame.Data[p] {
					diff := int(frame.Data[p][i]) - int(src[p][i])
					if diff < 0 {
						diff = -diff
					}
					require.LessOrEqual(t, diff, 4,
						"plane %d byte %d drifted beyond tolerance", p, i)
				}
			}
		})
	}
}
