package engine

import (
	"context"

	"github.com/klytics/sheetcanvas/internal/anchor"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/merge"
	"github.com/klytics/sheetcanvas/internal/style"
)

// Geometry is the grid of one sheet with its merged regions and resolved
// drawing anchors, before any element is extracted.
type Geometry struct {
	Sheet    string           `json:"sheet" yaml:"sheet"`
	Rows     int              `json:"rows" yaml:"rows"`
	Cols     int              `json:"cols" yaml:"cols"`
	Offsets  geometry.Offsets `json:"offsets" yaml:"offsets"`
	Bounds   geometry.Rect    `json:"boundsPx" yaml:"boundsPx"`
	Regions  []merge.Region   `json:"merges" yaml:"merges"`
	Anchors  []anchor.Entry   `json:"anchors" yaml:"anchors"`
	Skips    []anchor.Skip    `json:"skips" yaml:"skips"`
	Warnings []string         `json:"warnings" yaml:"warnings"`
}

// Inspect runs the geometry stage of a conversion and resolves the sheet's
// anchors. Errors follow Convert: only an unknown sheet or a cancelled
// context fail.
func (e *Engine) Inspect(ctx context.Context, wb Workbook, sheet string) (*Geometry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := e.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	r := &run{e: e, ctx: ctx, wb: wb, name: sheet, logger: logger, theme: wb.Theme(), res: &Result{Sheet: sheet}}
	if r.theme == nil {
		r.theme = style.DefaultTheme()
	}
	if err := r.parseGeometry(); err != nil {
		return nil, err
	}

	g := &Geometry{
		Sheet:    sheet,
		Rows:     r.res.Rows,
		Cols:     r.res.Cols,
		Offsets:  r.off,
		Bounds:   r.res.Bounds,
		Regions:  r.regions,
		Anchors:  []anchor.Entry{},
		Skips:    []anchor.Skip{},
		Warnings: r.res.Warnings,
	}
	if g.Regions == nil {
		g.Regions = []merge.Region{}
	}
	if g.Warnings == nil {
		g.Warnings = []string{}
	}
	if r.drawing != nil {
		opts := e.opts.Anchors
		opts.Theme = r.theme
		res := anchor.Parse(sheet, r.drawing, r.rels, r.off, opts, logger)
		g.Anchors = append(g.Anchors, res.Entries...)
		g.Skips = append(g.Skips, res.Skips...)
	}
	return g, nil
}
