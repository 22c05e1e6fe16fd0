package geometry

// Dimensions describes the grid of one sheet. Indices are zero-based.
// Widths are in character units and heights in points, as stored in the
// worksheet part. Missing entries fall back to the defaults.
type Dimensions struct {
	ColWidths  map[int]float64
	RowHeights map[int]float64
	HiddenCols map[int]bool
	HiddenRows map[int]bool

	DefaultColWidth  float64
	DefaultRowHeight float64

	// Cols and Rows are the number of columns and rows the tables must cover.
	Cols int
	Rows int
}

// Offsets holds cumulative pixel offsets. Cols[i] is the left edge of
// column i and Cols[len-1] is the trailing edge of the last column; Rows
// works the same way. Both slices are non-decreasing.
type Offsets struct {
	Cols []float64 `json:"colOffsetsPx"`
	Rows []float64 `json:"rowOffsetsPx"`
}

// OffsetsFor builds the offset tables for d. It never fails: unknown or
// invalid dimensions fall back to the sheet defaults, and those fall back to
// the Office defaults.
func OffsetsFor(d Dimensions, u Units) Offsets {
	defCol := d.DefaultColWidth
	if defCol <= 0 || !isFinite(defCol) {
		defCol = DefaultColWidth
	}
	defRow := d.DefaultRowHeight
	if defRow <= 0 || !isFinite(defRow) {
		defRow = DefaultRowHeight
	}

	cols := max(d.Cols, 1)
	rows := max(d.Rows, 1)

	colPx := make([]float64, cols+1)
	for i := 0; i < cols; i++ {
		w, ok := d.ColWidths[i]
		if !ok || w < 0 || !isFinite(w) {
			w = defCol
		}
		px := u.ColumnPixels(w)
		if d.HiddenCols[i] {
			px = 0
		}
		colPx[i+1] = colPx[i] + px
	}

	rowPx := make([]float64, rows+1)
	for i := 0; i < rows; i++ {
		h, ok := d.RowHeights[i]
		if !ok || h < 0 || !isFinite(h) {
			h = defRow
		}
		px := RowPixels(h)
		if d.HiddenRows[i] {
			px = 0
		}
		rowPx[i+1] = rowPx[i] + px
	}

	return Offsets{Cols: colPx, Rows: rowPx}
}

// ClampCol clamps a column index to the valid range of the table and
// reports whether clamping happened.
func (o Offsets) ClampCol(i int) (int, bool) {
	return clampIndex(i, len(o.Cols))
}

// ClampRow clamps a row index to the valid range of the table and reports
// whether clamping happened.
func (o Offsets) ClampRow(i int) (int, bool) {
	return clampIndex(i, len(o.Rows))
}

func clampIndex(i, n int) (int, bool) {
	if n == 0 {
		return 0, true
	}
	if i < 0 {
		return 0, true
	}
	if i > n-1 {
		return n - 1, true
	}
	return i, false
}

// ColX returns the left edge of column i, clamping out-of-range indices.
func (o Offsets) ColX(i int) float64 {
	if len(o.Cols) == 0 {
		return 0
	}
	i, _ = o.ClampCol(i)
	return o.Cols[i]
}

// RowY returns the top edge of row i, clamping out-of-range indices.
func (o Offsets) RowY(i int) float64 {
	if len(o.Rows) == 0 {
		return 0
	}
	i, _ = o.ClampRow(i)
	return o.Rows[i]
}

// CellRect returns the pixel rectangle of a single cell.
func (o Offsets) CellRect(row, col int) Rect {
	return o.RangeRect(row, col, row, col)
}

// RangeRect returns the pixel rectangle covering the inclusive cell range.
func (o Offsets) RangeRect(top, left, bottom, right int) Rect {
	x := o.ColX(left)
	y := o.RowY(top)
	return Rect{X: x, Y: y, W: o.ColX(right+1) - x, H: o.RowY(bottom+1) - y}
}

// Bounds returns the rectangle covered by the whole table.
func (o Offsets) Bounds() Rect {
	var w, h float64
	if n := len(o.Cols); n > 0 {
		w = o.Cols[n-1]
	}
	if n := len(o.Rows); n > 0 {
		h = o.Rows[n-1]
	}
	return Rect{W: w, H: h}
}

// NumCols returns the number of columns covered.
func (o Offsets) NumCols() int { return max(len(o.Cols)-1, 0) }

// NumRows returns the number of rows covered.
func (o Offsets) NumRows() int { return max(len(o.Rows)-1, 0) }
