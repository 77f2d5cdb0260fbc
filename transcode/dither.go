package transcode

import "image"

// ditherIndex converts a raster into one palette index per pixel using
// Floyd-Steinberg error diffusion: pixels are visited in raster order and
// the residual of each quantization is split 7/16 to the right, 3/16
// below-left, 5/16 below and 1/16 below-right. Residue falling outside the
// raster is discarded.
//
// The result is bit-for-bit reproducible for identical input and palette.
func ditherIndex(m *image.NRGBA, pal *Palette) []uint8 {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)

	// Error rows are two pixels wider than the raster so the diffusion
	// below never needs an edge branch; x+1 is the current column.
	cur := make([][3]int32, w+2)
	next := make([][3]int32, w+2)

	for y := 0; y < h; y++ {
		for i := range next {
			next[i] = [3]int32{}
		}

		for x := 0; x < w; x++ {
			o := m.PixOffset(b.Min.X+x, b.Min.Y+y)

			r := clamp8(int32(m.Pix[o]) + cur[x+1][0])
			g := clamp8(int32(m.Pix[o+1]) + cur[x+1][1])
			bl := clamp8(int32(m.Pix[o+2]) + cur[x+1][2])

			idx := pal.Nearest(r, g, bl)
			out[y*w+x] = idx

			c := pal.Color(idx)
			er := int32(r) - int32(c.R)
			eg := int32(g) - int32(c.G)
			eb := int32(bl) - int32(c.B)

			cur[x+2][0] += er * 7 / 16
			cur[x+2][1] += eg * 7 / 16
			cur[x+2][2] += eb * 7 / 16

			next[x][0] += er * 3 / 16
			next[x][1] += eg * 3 / 16
			next[x][2] += eb * 3 / 16

			next[x+1][0] += er * 5 / 16
			next[x+1][1] += eg * 5 / 16
			next[x+1][2] += eb * 5 / 16

			next[x+2][0] += er / 16
			next[x+2][1] += eg / 16
			next[x+2][2] += eb / 16
		}

		cur, next = next, cur
	}

	return out
}

// mapIndex quantizes every pixel independently, with no error diffusion.
func mapIndex(m *image.NRGBA, pal *Palette) []uint8 {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := m.PixOffset(b.Min.X+x, b.Min.Y+y)
			out[y*w+x] = pal.Nearest(m.Pix[o], m.Pix[o+1], m.Pix[o+2])
		}
	}

	return out
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
