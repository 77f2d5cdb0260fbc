package transcode

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRaster(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x ^ y), 0xff})
		}
	}
	return m
}

func TestRotate90Mapping(t *testing.T) {
	m := testRaster(3, 2)
	r := rotateClockwise(m, 90)

	require.Equal(t, image.Rect(0, 0, 2, 3), r.Bounds())

	// Top-left of the source ends up top-right.
	assert.Equal(t, m.NRGBAAt(0, 0), r.NRGBAAt(1, 0))
	// Bottom-left of the source ends up top-left.
	assert.Equal(t, m.NRGBAAt(0, 1), r.NRGBAAt(0, 0))
	// Top-right of the source ends up bottom-right.
	assert.Equal(t, m.NRGBAAt(2, 0), r.NRGBAAt(1, 2))
}

func TestRotate180(t *testing.T) {
	m := testRaster(4, 3)
	r := rotateClockwise(m, 180)

	require.Equal(t, m.Bounds().Size(), r.Bounds().Size())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, m.NRGBAAt(x, y), r.NRGBAAt(3-x, 2-y))
		}
	}
}

func TestRotateFourQuartersIsIdentity(t *testing.T) {
	m := testRaster(5, 3)

	r := m
	for i := 0; i < 4; i++ {
		r = rotateClockwise(r, 90)
	}

	require.Equal(t, m.Bounds(), r.Bounds())
	assert.Equal(t, m.Pix, r.Pix)
}

func TestRotate270IsThree90s(t *testing.T) {
	m := testRaster(4, 6)

	want := rotateClockwise(rotateClockwise(rotateClockwise(m, 90), 90), 90)
	got := rotateClockwise(m, 270)

	require.Equal(t, want.Bounds(), got.Bounds())
	assert.Equal(t, want.Pix, got.Pix)
}

func TestRotateZeroIsNoop(t *testing.T) {
	m := testRaster(2, 2)
	assert.Same(t, m, rotateClockwise(m, 0))
}
