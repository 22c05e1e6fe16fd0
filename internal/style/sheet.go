package style

// SheetColor is a color as written in cell formatting: either an ARGB hex
// value or a theme index, with an optional tint in [-1, 1].
type SheetColor struct {
	Hex   string
	Theme *int
	Tint  float64
}

// ResolveSheetColor resolves cell formatting colors. Fully transparent ARGB
// values are reported as such through Opacity.
func ResolveSheetColor(sc SheetColor, th *Theme) (ColorSpec, bool) {
	if sc.Hex != "" {
		rgb, alpha, ok := ParseHex(sc.Hex)
		if !ok {
			return ColorSpec{}, false
		}
		// Excel writes FF alpha for opaque colors and often 00 for "auto";
		// treat a zero alpha on a non-black color as opaque.
		if alpha == 0 && rgb != (RGB{}) {
			alpha = 1
		}
		return ColorSpec{RGB: ApplySheetTint(rgb, sc.Tint), Opacity: alpha}, true
	}
	if sc.Theme != nil {
		rgb, ok := th.Indexed(*sc.Theme)
		if !ok {
			return ColorSpec{}, false
		}
		return Opaque(ApplySheetTint(rgb, sc.Tint)), true
	}
	return ColorSpec{}, false
}

// Cell border line styles, numbered as in SpreadsheetML's ST_BorderStyle.
var borderStyles = []struct {
	width float64
	dash  string
}{
	{0, ""},
	{1, ""},
	{2, ""},
	{1, "dash"},
	{1, "dot"},
	{3, ""},
	{3, "double"},
	{0.5, ""},
	{2, "dash"},
	{1, "dashDot"},
	{2, "dashDot"},
	{1, "dashDotDot"},
	{2, "dashDotDot"},
	{2, "dashDot"},
}

// BorderStroke converts a cell border style index and color into a stroke.
// An unresolvable color falls back to black.
func BorderStroke(styleIdx int, sc SheetColor, th *Theme) Stroke {
	if styleIdx <= 0 || styleIdx >= len(borderStyles) {
		return NoStroke
	}
	spec, ok := ResolveSheetColor(sc, th)
	if !ok {
		spec = Opaque(DefaultStrokeColor)
	}
	b := borderStyles[styleIdx]
	return Stroke{Kind: PaintSolid, Color: spec, WidthPx: b.width, Dash: b.dash}
}

// CellFill converts a cell's pattern fill foreground into a fill. Only solid
// and patterned fills with a resolvable foreground paint anything.
func CellFill(pattern int, fg SheetColor, th *Theme) Fill {
	if pattern == 0 {
		return NoFill
	}
	spec, ok := ResolveSheetColor(fg, th)
	if !ok {
		return NoFill
	}
	return Fill{Kind: PaintSolid, Color: spec, Source: "cellFill"}
}
