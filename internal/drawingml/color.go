// Package drawingml holds the subset of the DrawingML vocabulary that
// spreadsheet drawing parts use for shape properties, colors and text.
//
// Element names are matched by local name only, so the same types decode
// a:, xdr: and unprefixed markup.
package drawingml

import (
	"encoding/xml"
	"strconv"
)

// Color kinds, named after their DrawingML elements.
const (
	ColorSRGB   = "srgbClr"
	ColorScheme = "schemeClr"
	ColorSys    = "sysClr"
	ColorPreset = "prstClr"
	ColorScRGB  = "scrgbClr"
	ColorHSL    = "hslClr"
)

// Transform is one color modifier (tint, shade, lumMod, lumOff, alpha...).
// Val is in thousandths of a percent: 100000 means 100%.
type Transform struct {
	Name string
	Val  int
}

// Color is a single DrawingML color element with its modifiers in the order
// they were declared.
type Color struct {
	Kind    string
	Val     string
	LastClr string

	// scrgbClr components and hslClr coordinates, as declared.
	R, G, B       int
	Hue, Sat, Lum int

	Transforms []Transform
}

// UnmarshalXML decodes the color attributes and keeps child modifiers in
// document order, which struct tags alone cannot do.
func (c *Color) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Kind = start.Name.Local
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "val":
			c.Val = a.Value
		case "lastClr":
			c.LastClr = a.Value
		case "r":
			c.R = atoi(a.Value)
		case "g":
			c.G = atoi(a.Value)
		case "b":
			c.B = atoi(a.Value)
		case "hue":
			c.Hue = atoi(a.Value)
		case "sat":
			c.Sat = atoi(a.Value)
		case "lum":
			c.Lum = atoi(a.Value)
		}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			tr := Transform{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Local == "val" {
					tr.Val = atoi(a.Value)
				}
			}
			c.Transforms = append(c.Transforms, tr)
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// ColorChoice is the DrawingML color choice group. At most one field is set
// in well-formed input.
type ColorChoice struct {
	SRGB   *Color `xml:"srgbClr"`
	Scheme *Color `xml:"schemeClr"`
	Sys    *Color `xml:"sysClr"`
	Preset *Color `xml:"prstClr"`
	ScRGB  *Color `xml:"scrgbClr"`
	HSL    *Color `xml:"hslClr"`
}

// Color returns the declared color, or nil when the group is empty.
func (c ColorChoice) Color() *Color {
	for _, clr := range []*Color{c.SRGB, c.Scheme, c.Sys, c.Preset, c.ScRGB, c.HSL} {
		if clr != nil {
			return clr
		}
	}
	return nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
