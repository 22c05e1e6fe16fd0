package style

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/klytics/sheetcanvas/internal/drawingml"
)

// colorStrategy derives a base color from one kind of color element.
// Strategies run in order and the first that succeeds wins.
type colorStrategy struct {
	name    string
	resolve func(c *drawingml.Color, th *Theme, ph *RGB) (RGB, bool)
}

var colorStrategies = []colorStrategy{
	{"literal", literalColor},
	{"scheme", schemeColor},
	{"system", systemColor},
	{"preset", presetColor},
	{"scrgb", scRGBColor},
	{"hsl", hslColor},
}

var systemColors = map[string]RGB{
	"windowText":    {0x00, 0x00, 0x00},
	"window":        {0xFF, 0xFF, 0xFF},
	"btnFace":       {0xF0, 0xF0, 0xF0},
	"btnText":       {0x00, 0x00, 0x00},
	"highlight":     {0x00, 0x78, 0xD7},
	"highlightText": {0xFF, 0xFF, 0xFF},
	"grayText":      {0x6D, 0x6D, 0x6D},
	"windowFrame":   {0x64, 0x64, 0x64},
	"3dDkShadow":    {0x69, 0x69, 0x69},
	"3dLight":       {0xE3, 0xE3, 0xE3},
}

var presetColors = map[string]RGB{
	"black":     {0x00, 0x00, 0x00},
	"white":     {0xFF, 0xFF, 0xFF},
	"red":       {0xFF, 0x00, 0x00},
	"green":     {0x00, 0x80, 0x00},
	"lime":      {0x00, 0xFF, 0x00},
	"blue":      {0x00, 0x00, 0xFF},
	"yellow":    {0xFF, 0xFF, 0x00},
	"orange":    {0xFF, 0xA5, 0x00},
	"purple":    {0x80, 0x00, 0x80},
	"violet":    {0xEE, 0x82, 0xEE},
	"gray":      {0x80, 0x80, 0x80},
	"grey":      {0x80, 0x80, 0x80},
	"silver":    {0xC0, 0xC0, 0xC0},
	"ltGray":    {0xD3, 0xD3, 0xD3},
	"dkGray":    {0xA9, 0xA9, 0xA9},
	"navy":      {0x00, 0x00, 0x80},
	"teal":      {0x00, 0x80, 0x80},
	"olive":     {0x80, 0x80, 0x00},
	"maroon":    {0x80, 0x00, 0x00},
	"cyan":      {0x00, 0xFF, 0xFF},
	"magenta":   {0xFF, 0x00, 0xFF},
	"brown":     {0xA5, 0x2A, 0x2A},
	"pink":      {0xFF, 0xC0, 0xCB},
	"gold":      {0xFF, 0xD7, 0x00},
	"tan":       {0xD2, 0xB4, 0x8C},
	"khaki":     {0xF0, 0xE6, 0x8C},
	"ltBlue":    {0xAD, 0xD8, 0xE6},
	"dkBlue":    {0x00, 0x00, 0x8B},
	"ltGreen":   {0x90, 0xEE, 0x90},
	"dkGreen":   {0x00, 0x64, 0x00},
	"dkRed":     {0x8B, 0x00, 0x00},
	"coral":     {0xFF, 0x7F, 0x50},
	"indigo":    {0x4B, 0x00, 0x82},
	"turquoise": {0x40, 0xE0, 0xD0},
}

func literalColor(c *drawingml.Color, _ *Theme, _ *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorSRGB {
		return RGB{}, false
	}
	rgb, _, ok := ParseHex(c.Val)
	return rgb, ok
}

func schemeColor(c *drawingml.Color, th *Theme, ph *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorScheme {
		return RGB{}, false
	}
	if c.Val == "phClr" {
		if ph == nil {
			return RGB{}, false
		}
		return *ph, true
	}
	return th.Lookup(c.Val)
}

func systemColor(c *drawingml.Color, _ *Theme, _ *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorSys {
		return RGB{}, false
	}
	if rgb, _, ok := ParseHex(c.LastClr); ok {
		return rgb, true
	}
	rgb, ok := systemColors[c.Val]
	return rgb, ok
}

func presetColor(c *drawingml.Color, _ *Theme, _ *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorPreset {
		return RGB{}, false
	}
	rgb, ok := presetColors[c.Val]
	return rgb, ok
}

func scRGBColor(c *drawingml.Color, _ *Theme, _ *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorScRGB {
		return RGB{}, false
	}
	lin := colorful.LinearRgb(pct(c.R), pct(c.G), pct(c.B)).Clamped()
	return fromColorful(lin), true
}

func hslColor(c *drawingml.Color, _ *Theme, _ *RGB) (RGB, bool) {
	if c.Kind != drawingml.ColorHSL {
		return RGB{}, false
	}
	h := float64(c.Hue) / 60000
	return fromColorful(colorful.Hsl(h, pct(c.Sat), pct(c.Lum)).Clamped()), true
}

// ResolveColor resolves one DrawingML color element, applying its modifiers
// in declared order. ok is false when no strategy recognizes the color.
func ResolveColor(c *drawingml.Color, th *Theme) (ColorSpec, bool) {
	return resolveColor(c, th, nil)
}

func resolveColor(c *drawingml.Color, th *Theme, ph *RGB) (ColorSpec, bool) {
	if c == nil {
		return ColorSpec{}, false
	}
	for _, s := range colorStrategies {
		base, ok := s.resolve(c, th, ph)
		if !ok {
			continue
		}
		return applyTransforms(base, c.Transforms), true
	}
	return ColorSpec{}, false
}

// applyTransforms applies modifiers in the order given. tint and shade blend
// linearly in RGB space; luminance and saturation modifiers work in HSL.
func applyTransforms(base RGB, trs []drawingml.Transform) ColorSpec {
	c := base
	alpha := 1.0
	for _, tr := range trs {
		v := pct(tr.Val)
		switch tr.Name {
		case "tint":
			c = blend(c, RGB{255, 255, 255}, 1-v)
		case "shade":
			c = blend(c, RGB{}, 1-v)
		case "lumMod", "lumOff", "satMod", "satOff", "hueOff", "hueMod":
			c = adjustHSL(c, tr.Name, v, tr.Val)
		case "alpha":
			alpha = v
		case "alphaMod":
			alpha *= v
		case "alphaOff":
			alpha += v
		case "inv":
			c = RGB{255 - c.R, 255 - c.G, 255 - c.B}
		case "gray":
			y := uint8(math.Round(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)))
			c = RGB{y, y, y}
		case "comp":
			h, s, l := toColorful(c).Hsl()
			c = fromColorful(colorful.Hsl(math.Mod(h+180, 360), s, l))
		}
	}
	return ColorSpec{RGB: c, Opacity: clamp01(alpha)}
}

func adjustHSL(c RGB, name string, v float64, raw int) RGB {
	h, s, l := toColorful(c).Hsl()
	switch name {
	case "lumMod":
		l *= v
	case "lumOff":
		l += v
	case "satMod":
		s *= v
	case "satOff":
		s += v
	case "hueMod":
		h = math.Mod(h*v, 360)
	case "hueOff":
		h = math.Mod(h+float64(raw)/60000+360, 360)
	}
	return fromColorful(colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped())
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// pct converts thousandths of a percent to a ratio.
func pct(v int) float64 {
	return float64(v) / 100000
}
