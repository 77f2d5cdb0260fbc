/*
Package transcode converts arbitrary raster images into the exact packed
framebuffer a specific e-ink panel expects.

A conversion runs decode, gamma correction, resize, rotation,
error-diffusion dithering against the panel palette and finally bit
packing, all parametrized by a profile.Profile. The whole pipeline is pure
computation: bytes in, bytes out, no I/O, and safe to run concurrently
from any number of goroutines.
*/
package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/inkgallery/inkgallery/profile"
)

var (
	// ErrDecode is returned when the source bytes are not a supported
	// raster format.
	ErrDecode = errors.New("transcode: cannot decode image")

	// ErrUnsupportedColorMode is returned when a profile declares a color
	// mode the packer does not implement.
	ErrUnsupportedColorMode = errors.New("transcode: unsupported color mode")
)

// Options tune a single conversion. The zero value is the hardware
// default: stretch to the panel size, dithering on.
type Options struct {
	Fit      Fit
	NoDither bool
}

// Transcoder converts source images into panel framebuffers. It holds no
// state; one instance serves any number of concurrent calls.
type Transcoder struct{}

// New returns a Transcoder.
func New() *Transcoder {
	return &Transcoder{}
}

// Transcode converts the encoded source image into the packed framebuffer
// for p using default options.
func (t *Transcoder) Transcode(data []byte, p *profile.Profile) ([]byte, error) {
	return t.TranscodeOptions(data, p, Options{})
}

// TranscodeOptions converts the encoded source image into the packed
// framebuffer for p. On any error nothing is returned; there is no partial
// output.
func (t *Transcoder) TranscodeOptions(data []byte, p *profile.Profile, o Options) ([]byte, error) {
	idx, _, err := t.quantized(data, p, o)
	if err != nil {
		return nil, err
	}
	return packIndices(p, idx)
}

// TranscodeImage runs the same pipeline but returns the quantized raster
// as a paletted image, for previewing the panel rendition in an ordinary
// image format.
func (t *Transcoder) TranscodeImage(data []byte, p *profile.Profile, o Options) (*image.Paletted, error) {
	idx, pal, err := t.quantized(data, p, o)
	if err != nil {
		return nil, err
	}

	w, h := p.Width, p.Height
	m := image.NewPaletted(image.Rect(0, 0, w, h), pal.Colors())
	copy(m.Pix, idx)
	return m, nil
}

// quantized produces one palette index per output pixel, in panel scan
// order, together with the palette the indices refer to.
func (t *Transcoder) quantized(data []byte, p *profile.Profile, o Options) ([]uint8, *Palette, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if _, err := layoutFor(p.Mode); err != nil {
		return nil, nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	src = normalizeOrientation(src, exifOrientation(data))

	corrected := applyGamma(src, p.Gamma)

	// Resize targets the pre-rotation dimensions so that after rotating
	// into the panel's scan order the raster is exactly Width x Height.
	tw, th := p.Width, p.Height
	if p.Rotation == 90 || p.Rotation == 270 {
		tw, th = th, tw
	}

	m := rotateClockwise(resizeTo(corrected, tw, th, o.Fit), p.Rotation)

	colors := p.Palette
	if p.Mode == profile.FullColorDithered && len(colors) == 0 {
		colors = adaptivePalette(m)
	}
	pal := NewPalette(p.Mode, colors)

	var idx []uint8
	if o.NoDither {
		idx = mapIndex(m, pal)
	} else {
		idx = ditherIndex(m, pal)
	}

	return idx, pal, nil
}
