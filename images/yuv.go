package images

// Pure buffer-layout transforms used by the converter. OpenCV only ships the
// native-to-BGR direction for semi-planar and packed YUV layouts, so the
// reverse direction is assembled from a planar conversion plus the repack
// loops below.

// gatherPlanes copies a frame's planes into one contiguous buffer, dropping
// stride padding. The result is laid out plane after plane, each row tightly
// packed.
func gatherPlanes(frame *VideoFrame, specs []PlaneSpec) []byte {
	total := 0
	for _, spec := range specs {
		total += spec.Size()
	}
	buf := make([]byte, total)

	off := 0
	for i, spec := range specs {
		stride := frame.Linesize[i]
		for row := 0; row < spec.Rows; row++ {
			copy(buf[off:off+spec.RowBytes], frame.Data[i][row*stride:])
			off += spec.RowBytes
		}
	}
	return buf
}

// scatterPlanes copies a contiguous plane-ordered buffer back into a frame's
// plane buffers, honoring each plane's stride.
func scatterPlanes(buf []byte, frame *VideoFrame, specs []PlaneSpec) {
	off := 0
	for i, spec := range specs {
		stride := frame.Linesize[i]
		for row := 0; row < spec.Rows; row++ {
			copy(frame.Data[i][row*stride:row*stride+spec.RowBytes], buf[off:off+spec.RowBytes])
			off += spec.RowBytes
		}
	}
}

// interleaveChroma repacks a contiguous I420 buffer into the NV12 layout:
// the Y plane is kept, the planar U and V planes are interleaved into UV
// pairs. Value order within each chroma plane is preserved.
func interleaveChroma(i420 []byte, width, height int) []byte {
	ySize := width * height
	cSize := ySize / 4

	out := make([]byte, ySize+2*cSize)
	copy(out, i420[:ySize])

	u := i420[ySize : ySize+cSize]
	v := i420[ySize+cSize:]
	uv := out[ySize:]
	for i := 0; i < cSize; i++ {
		uv[2*i] = u[i]
		uv[2*i+1] = v[i]
	}
	return out
}

// packUYVY packs a tightly packed 4:4:4 YUV image (Y U V per pixel) into the
// UYVY 4:2:2 layout, averaging the chroma of each horizontal pixel pair.
func packUYVY(yuv444 []byte, width, height int) []byte {
	out := make([]byte, width*height*2)

	for y := 0; y < height; y++ {
		src := yuv444[y*width*3:]
		dst := out[y*width*2:]
		for x := 0; x < width; x += 2 {
			y0 := src[x*3]
			u0 := src[x*3+1]
			v0 := src[x*3+2]
			y1 := src[(x+1)*3]
			u1 := src[(x+1)*3+1]
			v1 := src[(x+1)*3+2]

			dst[x*2] = uint8((uint16(u0) + uint16(u1)) / 2)
			dst[x*2+1] = y0
			dst[x*2+2] = uint8((uint16(v0) + uint16(v1)) / 2)
			dst[x*2+3] = y1
		}
	}
	return out
}
