package transcode

import (
	"bytes"
	"image"
	"image/draw"

	"github.com/rwcarlsen/goexif/exif"
)

// exifOrientation returns the EXIF orientation tag of the encoded image,
// or 1 (upright) when there is no usable tag.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// normalizeOrientation undoes the camera transform recorded in the EXIF
// orientation tag so the raster is upright before resizing. Phone JPEGs
// commonly store the sensor raster as-is and rely on this tag for display.
func normalizeOrientation(src image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return src
	}

	m := toNRGBA(src)
	switch orientation {
	case 2:
		return flipHorizontal(m)
	case 3:
		return rotateClockwise(m, 180)
	case 4:
		return rotateClockwise(flipHorizontal(m), 180)
	case 5:
		return flipHorizontal(rotateClockwise(m, 90))
	case 6:
		return rotateClockwise(m, 90)
	case 7:
		return flipHorizontal(rotateClockwise(m, 270))
	default:
		return rotateClockwise(m, 270)
	}
}

func toNRGBA(src image.Image) *image.NRGBA {
	if m, ok := src.(*image.NRGBA); ok {
		return m
	}
	b := src.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), src, b.Min, draw.Src)
	return m
}

// flipHorizontal mirrors the raster left to right.
func flipHorizontal(m *image.NRGBA) *image.NRGBA {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := m.PixOffset(b.Min.X+w-1-x, b.Min.Y+y)
			do := dst.PixOffset(x, y)
			copy(dst.Pix[do:do+4], m.Pix[so:so+4])
		}
	}
	return dst
}
