package xlsx

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/merge"
	"github.com/klytics/sheetcanvas/internal/style"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// DefaultFontSize is the cell font size in points when a style declares none.
const DefaultFontSize = 11.0

// Font is a resolved cell or run font.
type Font struct {
	Family    string          `json:"family,omitempty" yaml:"family,omitempty"`
	SizePt    float64         `json:"sizePt" yaml:"sizePt"`
	Bold      bool            `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool            `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool            `json:"underline,omitempty" yaml:"underline,omitempty"`
	Color     style.ColorSpec `json:"color" yaml:"color"`
}

// Run is one formatted span of rich cell text.
type Run struct {
	Text string `json:"text" yaml:"text"`
	Font Font   `json:"font" yaml:"font"`
}

// Borders holds the four cell edges.
type Borders struct {
	Top    style.Stroke `json:"top" yaml:"top"`
	Right  style.Stroke `json:"right" yaml:"right"`
	Bottom style.Stroke `json:"bottom" yaml:"bottom"`
	Left   style.Stroke `json:"left" yaml:"left"`
}

// Any reports whether any edge is visible.
func (b Borders) Any() bool {
	return b.Top.Visible() || b.Right.Visible() || b.Bottom.Visible() || b.Left.Visible()
}

// Cell is a cell with content or visible formatting. Row and Col are
// zero-based.
type Cell struct {
	Row     int        `json:"row" yaml:"row"`
	Col     int        `json:"col" yaml:"col"`
	Value   string     `json:"value,omitempty" yaml:"value,omitempty"`
	Runs    []Run      `json:"runs,omitempty" yaml:"runs,omitempty"`
	Fill    style.Fill `json:"fill" yaml:"fill"`
	Borders Borders    `json:"borders" yaml:"borders"`
	Font    Font       `json:"font" yaml:"font"`
	HAlign  string     `json:"hAlign" yaml:"hAlign"`
	VAlign  string     `json:"vAlign" yaml:"vAlign"`
	Wrap    bool       `json:"wrap,omitempty" yaml:"wrap,omitempty"`
}

// Sheet is the content of one worksheet needed for reconstruction.
type Sheet struct {
	Name   string
	Rows   int
	Cols   int
	Cells  []Cell
	Merges []merge.Decl
	// Truncated is set when the scan stopped at the cell limit.
	Truncated bool
}

// cellStyle is the resolved form of one excelize style index.
type cellStyle struct {
	fill    style.Fill
	borders Borders
	font    Font
	hAlign  string
	vAlign  string
	wrap    bool
	visible bool
}

// Sheet scans a worksheet in row-major order. Empty cells without visible
// formatting are omitted. At most maxCells grid positions are visited when
// maxCells > 0.
func (f *File) Sheet(name string, maxCells int) (*Sheet, error) {
	if _, err := f.sheet(name); err != nil {
		return nil, err
	}
	rows, err := f.x.GetRows(name)
	if err != nil {
		return nil, err
	}
	s := &Sheet{Name: name}
	s.Rows, s.Cols = f.extent(name, rows)

	merges, err := f.x.GetMergeCells(name)
	if err != nil {
		return nil, err
	}
	for _, m := range merges {
		s.Merges = append(s.Merges, merge.Decl{Ref: m.GetStartAxis() + ":" + m.GetEndAxis()})
	}

	visited := 0
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			if maxCells > 0 && visited >= maxCells {
				s.Truncated = true
				return s, nil
			}
			visited++
			var value string
			if r < len(rows) && c < len(rows[r]) {
				value = rows[r][c]
			}
			cell, ok, err := f.cell(name, r, c, value)
			if err != nil {
				return nil, err
			}
			if ok {
				s.Cells = append(s.Cells, cell)
			}
		}
	}
	return s, nil
}

// extent returns the grid size from the declared dimension and the data.
func (f *File) extent(name string, rows [][]string) (int, int) {
	nRows, nCols := len(rows), 0
	for _, r := range rows {
		nCols = max(nCols, len(r))
	}
	ref, err := f.x.GetSheetDimension(name)
	if err != nil || ref == "" {
		return nRows, nCols
	}
	parts := strings.Split(ref, ":")
	col, row, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return nRows, nCols
	}
	return max(nRows, row), max(nCols, col)
}

func (f *File) cell(sheet string, row, col int, value string) (Cell, bool, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, false, err
	}
	id, err := f.x.GetCellStyle(sheet, ref)
	if err != nil {
		return Cell{}, false, err
	}
	cs := f.style(id)
	if value == "" && !cs.visible {
		return Cell{}, false, nil
	}
	c := Cell{
		Row:     row,
		Col:     col,
		Value:   value,
		Fill:    cs.fill,
		Borders: cs.borders,
		Font:    cs.font,
		HAlign:  cs.hAlign,
		VAlign:  cs.vAlign,
		Wrap:    cs.wrap,
	}
	if c.HAlign == "" {
		c.HAlign = textfit.AlignLeft
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			c.HAlign = textfit.AlignRight
		}
	}
	if value != "" {
		runs, err := f.x.GetCellRichText(sheet, ref)
		if err == nil && len(runs) > 1 {
			for _, r := range runs {
				c.Runs = append(c.Runs, Run{Text: r.Text, Font: f.font(r.Font, cs.font)})
			}
		}
	}
	return c, true, nil
}

// style resolves and caches a style index. Unknown indices resolve to the
// default style.
func (f *File) style(id int) *cellStyle {
	if cs, ok := f.styles[id]; ok {
		return cs
	}
	cs := &cellStyle{
		fill:   style.NoFill,
		font:   Font{SizePt: DefaultFontSize, Color: style.Opaque(style.DefaultTextColor)},
		vAlign: textfit.AlignBottom,
		borders: Borders{
			Top: style.NoStroke, Right: style.NoStroke, Bottom: style.NoStroke, Left: style.NoStroke,
		},
	}
	f.styles[id] = cs
	st, err := f.x.GetStyle(id)
	if err != nil || st == nil {
		return cs
	}

	if len(st.Fill.Color) > 0 {
		pattern := st.Fill.Pattern
		if st.Fill.Type == "gradient" {
			pattern = 1
		}
		cs.fill = style.CellFill(pattern, style.SheetColor{Hex: st.Fill.Color[0]}, f.theme)
	}
	for _, b := range st.Border {
		stroke := style.BorderStroke(b.Style, style.SheetColor{Hex: b.Color}, f.theme)
		switch b.Type {
		case "top":
			cs.borders.Top = stroke
		case "right":
			cs.borders.Right = stroke
		case "bottom":
			cs.borders.Bottom = stroke
		case "left":
			cs.borders.Left = stroke
		}
	}
	cs.font = f.font(st.Font, cs.font)
	if a := st.Alignment; a != nil {
		cs.hAlign = hAlign(a.Horizontal)
		cs.vAlign = vAlign(a.Vertical)
		cs.wrap = a.WrapText
	}
	cs.visible = cs.fill.Visible() || cs.borders.Any()
	return cs
}

// font resolves an excelize font over base. Unset sizes and colors keep
// the base values.
func (f *File) font(ef *excelize.Font, base Font) Font {
	if ef == nil {
		return base
	}
	out := base
	out.Bold, out.Italic = ef.Bold, ef.Italic
	out.Underline = ef.Underline != "" && ef.Underline != "none"
	if ef.Family != "" {
		out.Family = ef.Family
	}
	if ef.Size > 0 {
		out.SizePt = ef.Size
	}
	sc := style.SheetColor{Hex: ef.Color, Theme: ef.ColorTheme, Tint: ef.ColorTint}
	if sc.Hex == "" && sc.Theme == nil && ef.ColorIndexed > 0 && ef.ColorIndexed < len(excelize.IndexedColorMapping) {
		sc.Hex = excelize.IndexedColorMapping[ef.ColorIndexed]
	}
	if spec, ok := style.ResolveSheetColor(sc, f.theme); ok {
		out.Color = spec
	}
	return out
}

func hAlign(s string) string {
	switch s {
	case "center", "centerContinuous", "distributed", "justify":
		return textfit.AlignCenter
	case "right":
		return textfit.AlignRight
	case "left", "fill":
		return textfit.AlignLeft
	default:
		return ""
	}
}

func vAlign(s string) string {
	switch s {
	case "top":
		return textfit.AlignTop
	case "center", "justify", "distributed":
		return textfit.AlignMiddle
	default:
		return textfit.AlignBottom
	}
}

// Dimensions reads column widths, row heights, visibility and the sheet's
// default sizes for a grid of at least rows x cols. The grid is capped at
// the worksheet limits.
func (f *File) Dimensions(name string, rows, cols int) (geometry.Dimensions, error) {
	if _, err := f.sheet(name); err != nil {
		return geometry.Dimensions{}, err
	}
	rows, cols = min(rows, excelize.TotalRows), min(cols, excelize.MaxColumns)
	d := geometry.Dimensions{
		ColWidths:  make(map[int]float64),
		RowHeights: make(map[int]float64),
		HiddenCols: make(map[int]bool),
		HiddenRows: make(map[int]bool),
		Cols:       cols,
		Rows:       rows,
	}
	props, err := f.x.GetSheetProps(name)
	if err != nil {
		return d, err
	}
	if props.DefaultColWidth != nil {
		d.DefaultColWidth = *props.DefaultColWidth
	}
	if props.DefaultRowHeight != nil {
		d.DefaultRowHeight = *props.DefaultRowHeight
	}

	for c := 0; c < cols; c++ {
		colName, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			break
		}
		if w, err := f.x.GetColWidth(name, colName); err == nil {
			d.ColWidths[c] = w
		}
		if visible, err := f.x.GetColVisible(name, colName); err == nil && !visible {
			d.HiddenCols[c] = true
		}
	}
	// excelize reports rows past the stored sheet data as invisible, so
	// visibility is only read for rows the sheet actually declares.
	data, err := f.x.GetRows(name)
	if err != nil {
		return d, err
	}
	declared := len(data)
	for r := 0; r < rows; r++ {
		if h, err := f.x.GetRowHeight(name, r+1); err == nil {
			d.RowHeights[r] = h
		}
		if r >= declared {
			continue
		}
		if visible, err := f.x.GetRowVisible(name, r+1); err == nil && !visible {
			d.HiddenRows[r] = true
		}
	}
	return d, nil
}
