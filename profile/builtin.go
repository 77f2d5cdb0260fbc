package profile

import "image/color"

var (
	black  = color.NRGBA{0x00, 0x00, 0x00, 0xff}
	white  = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	red    = color.NRGBA{0xff, 0x00, 0x00, 0xff}
	green  = color.NRGBA{0x00, 0xff, 0x00, 0xff}
	blue   = color.NRGBA{0x00, 0x00, 0xff, 0xff}
	yellow = color.NRGBA{0xff, 0xff, 0x00, 0xff}
	orange = color.NRGBA{0xff, 0xa5, 0x00, 0xff}
)

func grayRamp(levels int) []color.NRGBA {
	p := make([]color.NRGBA, levels)
	for i := range p {
		v := uint8(i * 255 / (levels - 1))
		p[i] = color.NRGBA{v, v, v, 0xff}
	}
	return p
}

// builtins covers the common panel families; any of them can be shadowed
// by a custom document of the same name.
var builtins = map[string]*Profile{
	"mono-800x480": {
		Name:    "mono-800x480",
		Width:   800,
		Height:  480,
		Mode:    Monochrome,
		Palette: []color.NRGBA{black, white},
		Gamma:   1.0,
	},
	"mono-296x128": {
		Name:    "mono-296x128",
		Width:   296,
		Height:  128,
		Mode:    Monochrome,
		Palette: []color.NRGBA{black, white},
		Gamma:   1.0,
	},
	"gray16-1872x1404": {
		Name:    "gray16-1872x1404",
		Width:   1872,
		Height:  1404,
		Mode:    Grayscale,
		Palette: grayRamp(16),
		Gamma:   1.0,
	},
	"quad-400x300": {
		Name:    "quad-400x300",
		Width:   400,
		Height:  300,
		Mode:    FourColor,
		Palette: []color.NRGBA{black, white, yellow, red},
		Gamma:   1.0,
	},
	"spectra-800x480": {
		Name:    "spectra-800x480",
		Width:   800,
		Height:  480,
		Mode:    SevenColorSpectra,
		Palette: []color.NRGBA{black, white, green, blue, red, yellow, orange},
		Gamma:   1.0,
	},
	"adaptive-800x480": {
		Name:   "adaptive-800x480",
		Width:  800,
		Height: 480,
		Mode:   FullColorDithered,
		Gamma:  1.0,
	},
}
