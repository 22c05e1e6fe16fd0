package style

import (
	"github.com/klytics/sheetcanvas/internal/drawingml"
	"github.com/klytics/sheetcanvas/internal/geometry"
)

// Paint kinds.
const (
	PaintNone  = "none"
	PaintSolid = "solid"
)

// Fill is a resolved shape or cell fill.
type Fill struct {
	Kind   string    `json:"kind" yaml:"kind"`
	Color  ColorSpec `json:"color" yaml:"color"`
	Source string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Stroke is a resolved outline.
type Stroke struct {
	Kind    string    `json:"kind" yaml:"kind"`
	Color   ColorSpec `json:"color" yaml:"color"`
	WidthPx float64   `json:"widthPx" yaml:"widthPx"`
	Dash    string    `json:"dash,omitempty" yaml:"dash,omitempty"`
}

// Visible reports whether the fill paints anything.
func (f Fill) Visible() bool {
	return f.Kind == PaintSolid && f.Color.Opacity > 0
}

// Visible reports whether the stroke paints anything.
func (s Stroke) Visible() bool {
	return s.Kind == PaintSolid && s.Color.Opacity > 0 && s.WidthPx > 0
}

// NoFill is the result when nothing declares a fill.
var NoFill = Fill{Kind: PaintNone}

// NoStroke is the result when nothing declares an outline.
var NoStroke = Stroke{Kind: PaintNone}

// DefaultStrokeWidthPx is used when a line declares no width.
const DefaultStrokeWidthPx = 1.0

// Theme line widths for lnRef idx 1..3, in EMUs.
var themeLineWidths = map[int]int64{1: 6350, 2: 12700, 3: 19050}

type fillInput struct {
	props *drawingml.ShapeProperties
	style *drawingml.ShapeStyle
	theme *Theme
}

// fillStrategy returns ok=false when it does not apply, letting the next
// strategy run.
type fillStrategy struct {
	name    string
	resolve func(in fillInput) (Fill, bool)
}

var fillStrategies = []fillStrategy{
	{"noFill", func(in fillInput) (Fill, bool) {
		if in.props == nil || in.props.NoFill == nil {
			return Fill{}, false
		}
		return Fill{Kind: PaintNone, Source: "noFill"}, true
	}},
	{"solidFill", func(in fillInput) (Fill, bool) {
		if in.props == nil || in.props.SolidFill == nil {
			return Fill{}, false
		}
		return solidOrDefault(in.props.SolidFill.Color(), in.theme, "solidFill"), true
	}},
	{"gradFill", func(in fillInput) (Fill, bool) {
		if in.props == nil || in.props.GradFill == nil {
			return Fill{}, false
		}
		var first *drawingml.Color
		if len(in.props.GradFill.Stops) > 0 {
			first = in.props.GradFill.Stops[0].Color()
		}
		return solidOrDefault(first, in.theme, "gradFill"), true
	}},
	{"blipFill", func(in fillInput) (Fill, bool) {
		if in.props == nil || in.props.BlipFill == nil {
			return Fill{}, false
		}
		return Fill{Kind: PaintSolid, Color: Opaque(PictureFillColor), Source: "blipFill"}, true
	}},
	{"pattFill", func(in fillInput) (Fill, bool) {
		if in.props == nil || in.props.PattFill == nil {
			return Fill{}, false
		}
		return solidOrDefault(in.props.PattFill.Fg.Color(), in.theme, "pattFill"), true
	}},
	{"fillRef", func(in fillInput) (Fill, bool) {
		if in.style == nil || in.style.FillRef == nil || in.style.FillRef.Idx == 0 {
			return Fill{}, false
		}
		return solidOrDefault(in.style.FillRef.Color(), in.theme, "fillRef"), true
	}},
}

func solidOrDefault(c *drawingml.Color, th *Theme, source string) Fill {
	spec, ok := ResolveColor(c, th)
	if !ok {
		spec = Opaque(DefaultFillColor)
	}
	return Fill{Kind: PaintSolid, Color: spec, Source: source}
}

// ResolveFill resolves the fill declared directly in shape properties.
func ResolveFill(sp *drawingml.ShapeProperties, th *Theme) Fill {
	return resolveFill(fillInput{props: sp, theme: th})
}

// ResolveShapeFill resolves a shape's fill, falling back to its theme style
// reference when the properties declare none.
func ResolveShapeFill(sp *drawingml.ShapeProperties, st *drawingml.ShapeStyle, th *Theme) Fill {
	return resolveFill(fillInput{props: sp, style: st, theme: th})
}

func resolveFill(in fillInput) Fill {
	for _, s := range fillStrategies {
		if f, ok := s.resolve(in); ok {
			return f
		}
	}
	return NoFill
}

// ResolveStroke resolves a shape outline from a:ln, falling back to the
// style's lnRef.
func ResolveStroke(sp *drawingml.ShapeProperties, st *drawingml.ShapeStyle, th *Theme) Stroke {
	var ln *drawingml.LineProperties
	if sp != nil {
		ln = sp.Line
	}
	var ref *drawingml.StyleRef
	if st != nil && st.LnRef != nil && st.LnRef.Idx > 0 {
		ref = st.LnRef
	}
	if ln == nil && ref == nil {
		return NoStroke
	}
	if ln != nil && ln.NoFill != nil {
		return NoStroke
	}

	width := DefaultStrokeWidthPx
	if ref != nil {
		if emu, ok := themeLineWidths[ref.Idx]; ok {
			width = geometry.PxFromEMU(emu)
		}
	}
	var clr *drawingml.Color
	dash := ""
	if ln != nil {
		if ln.W != nil && *ln.W > 0 {
			width = geometry.PxFromEMU(*ln.W)
		}
		switch {
		case ln.SolidFill != nil:
			clr = ln.SolidFill.Color()
		case ln.GradFill != nil && len(ln.GradFill.Stops) > 0:
			clr = ln.GradFill.Stops[0].Color()
		case ln.PattFill != nil:
			clr = ln.PattFill.Fg.Color()
		}
		if ln.PrstDash != nil && ln.PrstDash.Val != "solid" {
			dash = ln.PrstDash.Val
		}
	}
	if clr == nil && ref != nil {
		clr = ref.Color()
	}
	spec, ok := ResolveColor(clr, th)
	if !ok {
		spec = Opaque(DefaultStrokeColor)
	}
	return Stroke{Kind: PaintSolid, Color: spec, WidthPx: width, Dash: dash}
}

// ResolveTextColor picks the color of a run: the run's own fill, then the
// style's fontRef color, then black.
func ResolveTextColor(run *drawingml.RunProperties, st *drawingml.ShapeStyle, th *Theme) ColorSpec {
	if run != nil && run.SolidFill != nil {
		if spec, ok := ResolveColor(run.SolidFill.Color(), th); ok {
			return spec
		}
	}
	if st != nil && st.FontRef != nil {
		if spec, ok := ResolveColor(st.FontRef.Color(), th); ok {
			return spec
		}
	}
	return Opaque(DefaultTextColor)
}
