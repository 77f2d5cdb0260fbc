/*
Package profile describes the physical e-ink panels that images are
transcoded for: native resolution, color model, renderable palette and
mounting orientation.

A profile is parsed once from a YAML document, validated, and treated as
immutable for the duration of any transcoding run. Edits always go through
the Store which persists a new document and drops the cached value.
*/
package profile

import (
	"errors"
	"fmt"
	"image/color"
)

var (
	// ErrNotFound is returned when no profile exists for the requested name.
	ErrNotFound = errors.New("profile: not found")

	// ErrInvalid is returned when a profile document is malformed or
	// internally inconsistent.
	ErrInvalid = errors.New("profile: invalid")

	// ErrExists is returned when a profile would overwrite an existing one.
	ErrExists = errors.New("profile: already exists")
)

// ColorMode identifies the color model of a panel. It selects both the
// required palette cardinality and the packed framebuffer layout.
type ColorMode string

const (
	Monochrome        ColorMode = "monochrome"
	Grayscale         ColorMode = "grayscale"
	FourColor         ColorMode = "4-color"
	SevenColorSpectra ColorMode = "7-color-spectra"
	FullColorDithered ColorMode = "full-color-dithered"
)

// paletteSizes maps each fixed-palette mode to its required cardinality.
// FullColorDithered is absent on purpose; it accepts either no palette
// (derived per image) or any explicit palette of 2 to 256 entries.
var paletteSizes = map[ColorMode]int{
	Monochrome:        2,
	Grayscale:         16,
	FourColor:         4,
	SevenColorSpectra: 7,
}

// Profile is the static description of one physical panel.
type Profile struct {
	Name     string
	Width    int
	Height   int
	Mode     ColorMode
	Palette  []color.NRGBA
	Rotation int

	// Gamma is applied to the source before quantization; 0 or 1 means no
	// correction.
	Gamma float64

	// ByteAlignedRows pads each packed row to the next byte boundary for
	// controllers that expect a fixed byte stride per scan line.
	ByteAlignedRows bool

	// Custom is true when the profile comes from the user-managed overlay
	// directory rather than the built-in set.
	Custom bool
}

// Validate checks the internal consistency rules a profile must satisfy
// before it can drive a transcoding run.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalid)
	}

	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %s: non-positive resolution %dx%d", ErrInvalid, p.Name, p.Width, p.Height)
	}

	switch p.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: %s: rotation must be 0, 90, 180 or 270, got %d", ErrInvalid, p.Name, p.Rotation)
	}

	if p.Gamma < 0 {
		return fmt.Errorf("%w: %s: negative gamma %v", ErrInvalid, p.Name, p.Gamma)
	}

	switch p.Mode {
	case Monochrome, Grayscale, FourColor, SevenColorSpectra:
		if want := paletteSizes[p.Mode]; len(p.Palette) != want {
			return fmt.Errorf("%w: %s: %s palette must have %d entries, has %d", ErrInvalid, p.Name, p.Mode, want, len(p.Palette))
		}
	case FullColorDithered:
		if n := len(p.Palette); n == 1 || n > 256 {
			return fmt.Errorf("%w: %s: %s palette must have 2 to 256 entries or none, has %d", ErrInvalid, p.Name, p.Mode, n)
		}
	default:
		return fmt.Errorf("%w: %s: unknown color mode %q", ErrInvalid, p.Name, p.Mode)
	}

	return nil
}

// clone returns a deep copy so cached profiles are never aliased by
// callers.
func (p *Profile) clone() *Profile {
	dup := *p
	dup.Palette = append([]color.NRGBA(nil), p.Palette...)
	return &dup
}
