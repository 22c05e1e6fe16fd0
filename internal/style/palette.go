package style

import "math"

// Palette is a destination canvas color name.
type Palette string

const (
	PaletteBlack       Palette = "black"
	PaletteGrey        Palette = "grey"
	PaletteWhite       Palette = "white"
	PaletteRed         Palette = "red"
	PaletteLightRed    Palette = "light-red"
	PaletteOrange      Palette = "orange"
	PaletteYellow      Palette = "yellow"
	PaletteGreen       Palette = "green"
	PaletteLightGreen  Palette = "light-green"
	PaletteBlue        Palette = "blue"
	PaletteLightBlue   Palette = "light-blue"
	PaletteViolet      Palette = "violet"
	PaletteLightViolet Palette = "light-violet"
)

type hueBucket struct {
	hue   float64
	color Palette
	light Palette
}

var hueBuckets = []hueBucket{
	{0, PaletteRed, PaletteLightRed},
	{28, PaletteOrange, PaletteOrange},
	{50, PaletteYellow, PaletteYellow},
	{130, PaletteGreen, PaletteLightGreen},
	{215, PaletteBlue, PaletteLightBlue},
	{280, PaletteViolet, PaletteLightViolet},
}

// Palette thresholds, on HSL components in [0, 1].
const (
	whiteLightness = 0.92
	blackLightness = 0.12
	neutralSat     = 0.18
	lightVariant   = 0.72
	warmHueMin     = 20.0
	warmHueMax     = 70.0
	warmSatMax     = 0.5
	warmChromaMin  = 0.06
)

// MapToPalette buckets an RGB color into the canvas palette: near-white and
// near-black by lightness, warm low-saturation colors (olive, khaki, tan) to
// the nearest warm bucket, other low-saturation colors to grey, and the rest
// by nearest hue with wraparound.
func MapToPalette(c RGB) Palette {
	h, s, l := toColorful(c).Hsl()
	if l >= whiteLightness {
		return PaletteWhite
	}
	if l <= blackLightness {
		return PaletteBlack
	}
	chroma := (float64(max(c.R, c.G, c.B)) - float64(min(c.R, c.G, c.B))) / 255
	if h >= warmHueMin && h <= warmHueMax && s < warmSatMax && chroma >= warmChromaMin {
		if hueDistance(h, 28) <= hueDistance(h, 50) {
			return PaletteOrange
		}
		return PaletteYellow
	}
	if s < neutralSat || chroma < warmChromaMin {
		return PaletteGrey
	}
	best := hueBuckets[0]
	bestDist := math.Inf(1)
	for _, b := range hueBuckets {
		if d := hueDistance(h, b.hue); d < bestDist {
			best, bestDist = b, d
		}
	}
	if l >= lightVariant {
		return best.light
	}
	return best.color
}

func hueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Font size tiers of the destination canvas.
const (
	FontS  = "s"
	FontM  = "m"
	FontL  = "l"
	FontXL = "xl"
)

// FontTier buckets a font size in pixels.
func FontTier(px float64) string {
	switch {
	case px < 21:
		return FontS
	case px < 30:
		return FontM
	case px < 40:
		return FontL
	default:
		return FontXL
	}
}
