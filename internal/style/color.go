// Package style resolves fill, stroke and text colors from drawing and cell
// formatting into concrete RGB values, and buckets them into the discrete
// palette and font-size tiers of the destination canvas.
package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit sRGB color.
type RGB struct {
	R, G, B uint8
}

// Documented fallbacks for anything that cannot be resolved.
var (
	DefaultFillColor   = RGB{0xFF, 0xFF, 0xFF}
	DefaultStrokeColor = RGB{0x00, 0x00, 0x00}
	DefaultTextColor   = RGB{0x00, 0x00, 0x00}
	// PictureFillColor stands in for shapes filled with an image.
	PictureFillColor = RGB{0xD9, 0xD9, 0xD9}
)

// Hex returns the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// MarshalText encodes the color as "#RRGGBB" for JSON and YAML output.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText parses "#RRGGBB" or "RRGGBB".
func (c *RGB) UnmarshalText(b []byte) error {
	rgb, _, ok := ParseHex(string(b))
	if !ok {
		return fmt.Errorf("invalid color %q", b)
	}
	*c = rgb
	return nil
}

// ColorSpec is a resolved color with opacity in [0, 1].
type ColorSpec struct {
	RGB     RGB     `json:"rgb" yaml:"rgb"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// Opaque returns a fully opaque color spec for c.
func Opaque(c RGB) ColorSpec {
	return ColorSpec{RGB: c, Opacity: 1}
}

// ParseHex parses "RRGGBB", "#RRGGBB" or "AARRGGBB" and returns the color
// and its alpha (1 when no alpha is present).
func ParseHex(s string) (RGB, float64, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	alpha := 1.0
	switch len(s) {
	case 8:
		a, err := strconv.ParseUint(s[:2], 16, 8)
		if err != nil {
			return RGB{}, 0, false
		}
		alpha = float64(a) / 255
		s = s[2:]
	case 6:
	default:
		return RGB{}, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, 0, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, alpha, true
}

// FromOLE decodes an OLE packed color (0x00BBGGRR).
func FromOLE(v uint32) RGB {
	return RGB{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16)}
}

// OLE encodes c as an OLE packed color.
func (c RGB) OLE() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16
}

// blend linearly interpolates every channel from c toward target by t in [0, 1].
func blend(c, target RGB, t float64) RGB {
	t = clamp01(t)
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return RGB{R: mix(c.R, target.R), G: mix(c.G, target.G), B: mix(c.B, target.B)}
}

// ApplySheetTint applies a SpreadsheetML tint in [-1, 1]: positive values
// blend toward white, negative values toward black.
func ApplySheetTint(c RGB, tint float64) RGB {
	switch {
	case tint > 0:
		return blend(c, RGB{255, 255, 255}, tint)
	case tint < 0:
		return blend(c, RGB{}, -tint)
	default:
		return c
	}
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}
