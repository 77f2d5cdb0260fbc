package transcode

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	opaqueBlack = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	opaqueWhite = color.NRGBA{0xff, 0xff, 0xff, 0xff}
)

func TestResizeStretch(t *testing.T) {
	m := uniformNRGBA(30, 10, color.NRGBA{0xff, 0x00, 0x00, 0xff})

	r := resizeTo(m, 5, 5, FitStretch)
	require.Equal(t, image.Rect(0, 0, 5, 5), r.Bounds())
	assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, r.NRGBAAt(2, 2))
}

func TestResizeContainLetterboxes(t *testing.T) {
	m := uniformNRGBA(20, 10, opaqueWhite)

	// A 2:1 source inside a square leaves black bars above and below.
	r := resizeTo(m, 10, 10, FitContain)
	assert.Equal(t, opaqueBlack, r.NRGBAAt(5, 0))
	assert.Equal(t, opaqueWhite, r.NRGBAAt(5, 4))
	assert.Equal(t, opaqueBlack, r.NRGBAAt(5, 9))
}

func TestResizeContainExtremeAspect(t *testing.T) {
	// A 1000x1 strip must still land at least one visible row, not a
	// fully black frame.
	r := resizeTo(uniformNRGBA(1000, 1, opaqueWhite), 10, 10, FitContain)
	assert.Equal(t, opaqueWhite, r.NRGBAAt(5, 4))

	// And the transposed case, one visible column.
	r = resizeTo(uniformNRGBA(1, 1000, opaqueWhite), 10, 10, FitContain)
	assert.Equal(t, opaqueWhite, r.NRGBAAt(4, 5))
}

func TestResizeCoverCropsCenter(t *testing.T) {
	// Left half black, right half white; covering a square from a 2:1
	// source crops to the middle, so both halves stay represented.
	m := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			c := opaqueBlack
			if x >= 10 {
				c = opaqueWhite
			}
			m.SetNRGBA(x, y, c)
		}
	}

	r := resizeTo(m, 10, 10, FitCover)
	require.Equal(t, image.Rect(0, 0, 10, 10), r.Bounds())
	assert.Equal(t, opaqueBlack, r.NRGBAAt(1, 5))
	assert.Equal(t, opaqueWhite, r.NRGBAAt(8, 5))
}
