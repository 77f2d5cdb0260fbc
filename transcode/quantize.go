package transcode

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/inkgallery/inkgallery/profile"
)

// Palette is an ordered set of panel colors prepared for nearest-neighbor
// lookup. Lookups are pure functions of (pixel, palette) so the ditherer
// can probe candidate values freely.
//
// For monochrome and grayscale panels both the pixel and the palette are
// projected onto Rec.601 luma before the distance is taken, so a saturated
// pixel lands on the gray level of matching brightness.
type Palette struct {
	colors []color.NRGBA
	gray   bool
	luma   []int32
}

// NewPalette prepares colors for lookup under the given color mode.
func NewPalette(mode profile.ColorMode, colors []color.NRGBA) *Palette {
	p := &Palette{colors: colors}
	if mode == profile.Monochrome || mode == profile.Grayscale {
		p.gray = true
		p.luma = make([]int32, len(colors))
		for i, c := range colors {
			p.luma[i] = lumaOf(int32(c.R), int32(c.G), int32(c.B))
		}
	}
	return p
}

// lumaOf is the Rec.601 luminance 0.299R + 0.587G + 0.114B, scaled by 1000
// to stay in integer arithmetic.
func lumaOf(r, g, b int32) int32 {
	return 299*r + 587*g + 114*b
}

// Len returns the number of palette entries.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Color returns the palette entry at index i.
func (p *Palette) Color(i uint8) color.NRGBA {
	return p.colors[i]
}

// Colors returns the palette as a color.Palette for building paletted
// images.
func (p *Palette) Colors() color.Palette {
	cp := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		cp[i] = c
	}
	return cp
}

// Nearest returns the index of the palette entry closest to the given
// 8-bit RGB value by squared Euclidean distance. Equidistant entries
// resolve to the lowest index.
func (p *Palette) Nearest(r, g, b uint8) uint8 {
	if p.gray {
		return p.nearestGray(lumaOf(int32(r), int32(g), int32(b)))
	}

	best := 0
	bestDist := int64(1) << 62
	for i, c := range p.colors {
		dr := int64(r) - int64(c.R)
		dg := int64(g) - int64(c.G)
		db := int64(b) - int64(c.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			bestDist = d
			best = i
		}
	}
	return uint8(best)
}

func (p *Palette) nearestGray(y int32) uint8 {
	best := 0
	bestDist := int64(1) << 62
	for i, py := range p.luma {
		d := int64(y) - int64(py)
		if d *= d; d < bestDist {
			bestDist = d
			best = i
		}
	}
	return uint8(best)
}

// adaptivePalette derives a median-cut palette of up to 256 colors from
// the prepared raster, for full-color profiles that do not pin one.
func adaptivePalette(m image.Image) []color.NRGBA {
	q := quantize.MedianCutQuantizer{}
	cp := q.Quantize(make(color.Palette, 0, 256), m)

	colors := make([]color.NRGBA, len(cp))
	for i, c := range cp {
		colors[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return colors
}
