package profile

import (
	"fmt"
	"image/color"

	"gopkg.in/yaml.v3"
)

// document is the on-disk YAML shape of a profile. Colors are [R, G, B]
// triples of 0-255 values.
type document struct {
	Resolution struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"resolution"`
	ColorMapping struct {
		Mode    string  `yaml:"mode"`
		Palette [][]int `yaml:"palette,omitempty"`
	} `yaml:"color_mapping"`
	Rotation        int     `yaml:"rotation,omitempty"`
	Gamma           float64 `yaml:"gamma,omitempty"`
	ByteAlignedRows bool    `yaml:"byte_aligned_rows,omitempty"`
}

// Parse decodes and validates a profile document. The name comes from the
// document's filename, not its contents.
func Parse(name string, b []byte) (*Profile, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
	}

	p := &Profile{
		Name:            name,
		Width:           doc.Resolution.Width,
		Height:          doc.Resolution.Height,
		Mode:            ColorMode(doc.ColorMapping.Mode),
		Rotation:        doc.Rotation,
		Gamma:           doc.Gamma,
		ByteAlignedRows: doc.ByteAlignedRows,
	}
	if p.Gamma == 0 {
		p.Gamma = 1.0
	}

	for _, c := range doc.ColorMapping.Palette {
		if len(c) != 3 {
			return nil, fmt.Errorf("%w: %s: palette entry %v is not an [R, G, B] triple", ErrInvalid, name, c)
		}
		for _, v := range c {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: %s: palette value %d out of range", ErrInvalid, name, v)
			}
		}
		p.Palette = append(p.Palette, color.NRGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 0xff})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Encode renders a profile back into its YAML document form.
func Encode(p *Profile) ([]byte, error) {
	var doc document
	doc.Resolution.Width = p.Width
	doc.Resolution.Height = p.Height
	doc.ColorMapping.Mode = string(p.Mode)
	for _, c := range p.Palette {
		doc.ColorMapping.Palette = append(doc.ColorMapping.Palette, []int{int(c.R), int(c.G), int(c.B)})
	}
	doc.Rotation = p.Rotation
	if p.Gamma != 1.0 {
		doc.Gamma = p.Gamma
	}
	doc.ByteAlignedRows = p.ByteAlignedRows

	return yaml.Marshal(&doc)
}
