package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/klytics/sheetcanvas/internal/engine"
	"github.com/klytics/sheetcanvas/internal/geometry"
)

// RenderOptions control the text listing of conversion results.
type RenderOptions struct {
	// Skips lists skipped drawing objects after the elements.
	Skips bool
	// MaxText truncates quoted text; 0 keeps it whole.
	MaxText int
}

// RenderResults writes a human-readable listing of results to w, one block
// per sheet in paint order.
func RenderResults(w io.Writer, results []*engine.Result, opts RenderOptions) {
	header := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)
	warn := color.New(color.FgYellow)

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header.Fprintf(w, "Sheet: %s\n", res.Sheet)
		dim.Fprintf(w, "  %d rows x %d cols, %s, %s\n", res.Rows, res.Cols, sizeOf(res.Bounds), res.State)

		if len(res.Elements) == 0 {
			dim.Fprintln(w, "  (no elements)")
		}
		for _, el := range res.Elements {
			fmt.Fprintf(w, "  %-10s %-12s %s", el.Kind, el.Source, rectOf(el.Rect))
			if d := describe(el.Payload, opts.MaxText); d != "" {
				fmt.Fprintf(w, "  %s", d)
			}
			fmt.Fprintln(w)
		}

		for _, a := range res.Absent {
			warn.Fprintf(w, "  absent     %-12s %s (%s)\n", a.Element.Source, a.Reason, a.Detail)
		}
		if opts.Skips {
			for _, s := range res.Skips {
				warn.Fprintf(w, "  skipped    #%-11d %s %s\n", s.Index, s.Reason, s.Name)
			}
		}
		for _, msg := range res.Warnings {
			warn.Fprintf(w, "  warning: %s\n", msg)
		}

		dim.Fprintf(w, "  (%d elements, %d absent, %d skipped)\n", len(res.Elements), len(res.Absent), len(res.Skips))
	}
}

func describe(p engine.Payload, maxText int) string {
	switch p := p.(type) {
	case engine.Background:
		return fmt.Sprintf("%s %s", p.Fill.Color.RGB.Hex(), p.Palette)
	case engine.Border:
		var sides []string
		for _, s := range []struct {
			name string
			ok   bool
		}{{"top", p.Top.Visible()}, {"right", p.Right.Visible()}, {"bottom", p.Bottom.Visible()}, {"left", p.Left.Visible()}} {
			if s.ok {
				sides = append(sides, s.name)
			}
		}
		return strings.Join(sides, ",")
	case engine.Picture:
		return fmt.Sprintf("%s %dx%d in %s", p.Target, p.NaturalW, p.NaturalH, rectOf(p.Frame))
	case engine.TextBox:
		if p.Text == "" {
			return p.Name
		}
		return fmt.Sprintf("%q %dpt", truncate(p.Text, maxText), p.Font.SizePt)
	case engine.CellText:
		return fmt.Sprintf("%q %dpt %s", truncate(p.Text, maxText), p.Font.SizePt, p.Font.Tier)
	}
	return ""
}

func rectOf(r geometry.Rect) string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

func sizeOf(r geometry.Rect) string {
	return fmt.Sprintf("%gx%gpx", r.W, r.H)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
