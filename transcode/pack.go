package transcode

import (
	"fmt"

	"github.com/inkgallery/inkgallery/profile"
)

// layout describes how the quantized indices for one color mode are packed
// into the panel framebuffer.
type layout struct {
	// bitsPerPixel is ceil(log2(paletteSize)) rounded up to a divisor of
	// 8; modes wider than 4 bits use a whole byte per pixel.
	bitsPerPixel int
}

var layouts = map[profile.ColorMode]layout{
	profile.Monochrome:        {bitsPerPixel: 1},
	profile.Grayscale:         {bitsPerPixel: 4},
	profile.FourColor:         {bitsPerPixel: 2},
	profile.SevenColorSpectra: {bitsPerPixel: 8},
	profile.FullColorDithered: {bitsPerPixel: 8},
}

func layoutFor(mode profile.ColorMode) (layout, error) {
	l, ok := layouts[mode]
	if !ok {
		return layout{}, fmt.Errorf("%w: %q", ErrUnsupportedColorMode, mode)
	}
	return l, nil
}

// PackedSize returns the exact byte length of the packed framebuffer the
// profile produces.
func PackedSize(p *profile.Profile) (int, error) {
	l, err := layoutFor(p.Mode)
	if err != nil {
		return 0, err
	}

	if p.ByteAlignedRows || l.bitsPerPixel == 8 {
		stride := (p.Width*l.bitsPerPixel + 7) / 8
		return stride * p.Height, nil
	}
	return (p.Width*p.Height*l.bitsPerPixel + 7) / 8, nil
}

// packIndices packs one palette index per pixel into the byte layout the
// panel firmware expects: indices fill each byte most-significant-bits
// first in row-major order. Rows run back to back unless the profile asks
// for a byte-aligned stride, in which case each row is padded to the next
// byte boundary.
func packIndices(p *profile.Profile, idx []uint8) ([]byte, error) {
	l, err := layoutFor(p.Mode)
	if err != nil {
		return nil, err
	}

	if l.bitsPerPixel == 8 {
		out := make([]byte, len(idx))
		copy(out, idx)
		return out, nil
	}

	bpp := l.bitsPerPixel
	mask := uint8(1<<bpp - 1)

	if p.ByteAlignedRows {
		stride := (p.Width*bpp + 7) / 8
		out := make([]byte, stride*p.Height)
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				bit := x * bpp
				out[y*stride+bit>>3] |= (idx[y*p.Width+x] & mask) << (8 - bpp - bit&7)
			}
		}
		return out, nil
	}

	out := make([]byte, (len(idx)*bpp+7)/8)
	for i, v := range idx {
		bit := i * bpp
		out[bit>>3] |= (v & mask) << (8 - bpp - bit&7)
	}
	return out, nil
}
