package textfit

import (
	"math"

	"github.com/klytics/sheetcanvas/internal/geometry"
)

// DefaultTolerance is the safety margin applied to wrapped height.
const DefaultTolerance = 0.02

// Fitter wraps, fits and places text with one measuring surface.
type Fitter struct {
	Measurer  Measurer
	Tolerance float64
}

// NewFitter returns a Fitter using m. A negative tolerance is treated as 0.
func NewFitter(m Measurer, tolerance float64) *Fitter {
	return &Fitter{Measurer: m, Tolerance: math.Max(0, tolerance)}
}

// Measure wraps text at widthPx and fontPx.
func (f *Fitter) Measure(text string, widthPx, fontPx float64) Layout {
	return Measure(f.Measurer, text, widthPx, fontPx)
}

// FitFontSize binary searches integer point sizes in [minPt, basePt] for
// the largest size whose wrapped text fits boxW x boxH, including the
// tolerance. It returns minPt when nothing fits.
func (f *Fitter) FitFontSize(text string, boxW, boxH float64, basePt, minPt int) int {
	if minPt > basePt {
		minPt, basePt = basePt, minPt
	}
	if text == "" {
		return basePt
	}
	best := minPt
	lo, hi := minPt, basePt
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if f.fits(text, boxW, boxH, mid) {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

func (f *Fitter) fits(text string, boxW, boxH float64, pt int) bool {
	l := f.Measure(text, boxW, geometry.PxFromPoints(float64(pt)))
	return l.Width <= boxW+1e-9 && l.Height*(1+f.Tolerance) <= boxH+1e-9
}

// Horizontal alignments.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Vertical alignments.
const (
	AlignTop    = "top"
	AlignMiddle = "middle"
	AlignBottom = "bottom"
)

// Placement is text laid out inside a rect.
type Placement struct {
	Layout
	FontPx float64       `json:"fontPx"`
	Rect   geometry.Rect `json:"rect"`
}

// Place lays out text inside rect with the given alignment and padding.
// Text that fits on its natural lines keeps its true glyph width; otherwise
// it is wrapped at the padded width. The resulting origin is clamped so the
// text block starts inside rect even when rect is smaller than the text.
func (f *Fitter) Place(text string, rect geometry.Rect, fontPx float64, h, v string, padding float64) Placement {
	inner := rect.Inset(padding)
	l := f.Measure(text, 0, fontPx)
	if l.Width > inner.W {
		l = f.Measure(text, inner.W, fontPx)
	}

	x := inner.X
	switch h {
	case AlignCenter:
		x = inner.X + (inner.W-l.Width)/2
	case AlignRight:
		x = inner.Right() - l.Width
	}
	y := inner.Y
	switch v {
	case AlignMiddle:
		y = inner.Y + (inner.H-l.Height)/2
	case AlignBottom:
		y = inner.Bottom() - l.Height
	}

	w := math.Min(l.Width, rect.W)
	ht := math.Min(l.Height, rect.H)
	x = clamp(x, rect.X, rect.Right()-w)
	y = clamp(y, rect.Y, rect.Bottom()-ht)
	return Placement{Layout: l, FontPx: fontPx, Rect: geometry.Rect{X: x, Y: y, W: w, H: ht}}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}
