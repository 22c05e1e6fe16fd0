// Package engine reconstructs a worksheet as an ordered list of positioned,
// styled drawable elements: cell backgrounds, borders and text from a
// merge-aware cell scan, plus the pictures and shapes anchored in the
// sheet's drawing part.
//
// A conversion run moves through fixed stages:
//
//	Idle → ParsingGeometry → ExtractingElements → ResolvingStyles → Ordering → Placing → Done
//
// Problems with single elements or with the drawing part are recorded on the
// Result and never abort the run. Only an unknown sheet or a cancelled
// context fail a conversion.
package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/klytics/sheetcanvas/internal/anchor"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/merge"
	"github.com/klytics/sheetcanvas/internal/opc"
	"github.com/klytics/sheetcanvas/internal/style"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// Workbook is the source of one conversion. *xlsx.File implements it.
type Workbook interface {
	SheetNames() []string
	Sheet(name string, maxCells int) (*xlsx.Sheet, error)
	Dimensions(name string, rows, cols int) (geometry.Dimensions, error)
	Drawing(sheet string) (*xlsx.DrawingPart, error)
	Media(part string) ([]byte, error)
	Theme() *style.Theme
}

// TextOptions tune cell and text box text.
type TextOptions struct {
	// BasePt is the size of drawing text that declares none.
	BasePt int
	// MinPt is the smallest size text is shrunk to.
	MinPt int
	// PaddingPx insets text from its box.
	PaddingPx float64
	// Tolerance is the safety margin on wrapped height.
	Tolerance float64
}

// Options configure an Engine.
type Options struct {
	Units geometry.Units
	// DefaultColWidth and DefaultRowHeight apply when the sheet declares
	// no defaults of its own.
	DefaultColWidth  float64
	DefaultRowHeight float64

	Anchors anchor.Options
	Text    TextOptions
	Fit     FitOptions

	// MaxCells bounds the cell scan; 0 means unlimited.
	MaxCells int
	// GridSlack is how many rows and columns anchor markers may add past
	// the sheet's own extent.
	GridSlack int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Units:            geometry.DefaultUnits(),
		DefaultColWidth:  geometry.DefaultColWidth,
		DefaultRowHeight: geometry.DefaultRowHeight,
		Anchors:          anchor.DefaultOptions(),
		Text:             TextOptions{BasePt: 11, MinPt: 6, PaddingPx: 2, Tolerance: textfit.DefaultTolerance},
		Fit:              DefaultFitOptions(),
		MaxCells:         250_000,
		GridSlack:        256,
	}
}

// Absent reasons.
const (
	AbsentExternal   = "external_target"
	AbsentUnresolved = "unresolved_relationship"
	AbsentMissing    = "missing_part"
	AbsentUndecoded  = "undecodable"
)

// ReasonPlacement is the skip reason of an element whose placement failed.
const ReasonPlacement = "placement_failed"

// Absent is an element kept as metadata but not rendered because its
// resource is unavailable.
type Absent struct {
	Element Element `json:"element" yaml:"element"`
	Reason  string  `json:"reason" yaml:"reason"`
	Detail  string  `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Result is the outcome of converting one sheet.
type Result struct {
	Sheet    string        `json:"sheet" yaml:"sheet"`
	State    State         `json:"state" yaml:"state"`
	Rows     int           `json:"rows" yaml:"rows"`
	Cols     int           `json:"cols" yaml:"cols"`
	Bounds   geometry.Rect `json:"boundsPx" yaml:"boundsPx"`
	Elements []Element     `json:"elements" yaml:"elements"`
	Skips    []anchor.Skip `json:"skips" yaml:"skips"`
	Absent   []Absent      `json:"absent" yaml:"absent"`
	Warnings []string      `json:"warnings" yaml:"warnings"`
}

// Count returns the number of elements of the given kind.
func (r *Result) Count(kind Kind) int {
	n := 0
	for _, e := range r.Elements {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Engine converts sheets. It holds no per-run state and may be reused for
// any number of sequential conversions.
type Engine struct {
	opts   Options
	fitter *textfit.Fitter
	logger *log.Logger
}

// New creates an engine measuring text with m. A nil logger uses the logger
// carried by each conversion's context.
func New(m textfit.Measurer, opts Options, logger *log.Logger) *Engine {
	if m == nil {
		m = textfit.FixedMeasurer{CharWidth: 0.55, LineRatio: textfit.DefaultLineRatio}
	}
	if opts.Text.MinPt <= 0 {
		opts.Text.MinPt = 1
	}
	if opts.Text.BasePt <= 0 {
		opts.Text.BasePt = 11
	}
	return &Engine{opts: opts, fitter: textfit.NewFitter(m, opts.Text.Tolerance), logger: logger}
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Convert reconstructs one sheet. The returned Result is never nil; its
// State is StateFailed when an error is returned.
func (e *Engine) Convert(ctx context.Context, wb Workbook, sheet string) (*Result, error) {
	logger := e.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	r := &run{
		e:      e,
		ctx:    ctx,
		wb:     wb,
		name:   sheet,
		logger: logger,
		theme:  wb.Theme(),
		res: &Result{
			Sheet:    sheet,
			State:    StateIdle,
			Elements: []Element{},
			Skips:    []anchor.Skip{},
			Absent:   []Absent{},
			Warnings: []string{},
		},
	}
	if r.theme == nil {
		r.theme = style.DefaultTheme()
	}

	stages := []struct {
		state State
		fn    func() error
	}{
		{StateParsingGeometry, r.parseGeometry},
		{StateExtractingElements, r.extract},
		{StateResolvingStyles, r.resolveStyles},
		{StateOrdering, r.order},
		{StatePlacing, r.place},
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return r.fail(err)
		}
		r.transition(s.state)
		if err := s.fn(); err != nil {
			return r.fail(err)
		}
	}
	r.transition(StateDone)
	return r.res, nil
}

// ConvertAll converts every sheet in workbook order. It stops at the first
// failed sheet and returns the results gathered so far.
func (e *Engine) ConvertAll(ctx context.Context, wb Workbook) ([]*Result, error) {
	names := wb.SheetNames()
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		res, err := e.Convert(ctx, wb, name)
		if err != nil {
			return results, fmt.Errorf("could not convert sheet %q: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// run is the state of one conversion. It is discarded when Convert returns.
type run struct {
	e      *Engine
	ctx    context.Context
	wb     Workbook
	name   string
	logger *log.Logger
	theme  *style.Theme
	res    *Result

	sheet   *xlsx.Sheet
	off     geometry.Offsets
	regions []merge.Region
	drawing *anchor.Drawing
	rels    opc.Relationships
	entries map[string]*anchor.Entry

	drafts   []draft
	elements []Element
}

func (r *run) transition(to State) {
	r.logger.Debug("State transition", "sheet", r.name, "from", r.res.State, "to", to)
	r.res.State = to
}

func (r *run) fail(err error) (*Result, error) {
	r.logger.Debug("Conversion failed", "sheet", r.name, "state", r.res.State, "err", err)
	r.res.State = StateFailed
	return r.res, err
}

// warn records a structural problem that degrades the result without
// failing it.
func (r *run) warn(msg string, err error) {
	r.logger.Warn(msg, "sheet", r.name, "err", err)
	r.res.Warnings = append(r.res.Warnings, fmt.Sprintf("%s: %v", msg, err))
}
