package transcode

import "image"

// rotateClockwise rotates the raster by the given number of degrees so the
// byte layout matches the panel's physical scan order. Pixels are remapped
// verbatim; no resampling takes place.
func rotateClockwise(m *image.NRGBA, degrees int) *image.NRGBA {
	if degrees == 0 {
		return m
	}

	b := m.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.NRGBA
	if degrees == 180 {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	}

	db := dst.Bounds()
	for y := db.Min.Y; y < db.Max.Y; y++ {
		for x := db.Min.X; x < db.Max.X; x++ {
			var sx, sy int
			switch degrees {
			case 90:
				sx = b.Min.X + y
				sy = b.Min.Y + h - 1 - x
			case 180:
				sx = b.Min.X + w - 1 - x
				sy = b.Min.Y + h - 1 - y
			case 270:
				sx = b.Min.X + w - 1 - y
				sy = b.Min.Y + x
			}

			so := m.PixOffset(sx, sy)
			do := dst.PixOffset(x, y)
			copy(dst.Pix[do:do+4], m.Pix[so:so+4])
		}
	}

	return dst
}
