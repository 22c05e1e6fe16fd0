package geometry

import (
	"math"
	"testing"
)

func TestColumnPixels(t *testing.T) {
	u := DefaultUnits()
	tests := []struct {
		width float64
		want  float64
	}{
		{DefaultColWidth, 64},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{13, 91},
		{20.7109375, 145},
	}
	for _, tt := range tests {
		if got := u.ColumnPixels(tt.width); got != tt.want {
			t.Errorf("ColumnPixels(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestRowPixels(t *testing.T) {
	if got := RowPixels(15); got != 20 {
		t.Errorf("RowPixels(15) = %v, want 20", got)
	}
	if got := RowPixels(-1); got != 0 {
		t.Errorf("RowPixels(-1) = %v, want 0", got)
	}
}

func TestPointPixelRoundTrip(t *testing.T) {
	for _, px := range []float64{0, 1, 13, 20, 64, 99.5, 1000} {
		back := PxFromPoints(PointsFromPx(px))
		if math.Abs(back-px) > 1 {
			t.Errorf("round trip of %vpx gave %v", px, back)
		}
	}
	if pt := PointsFromPx(PxFromPoints(15)); math.Abs(pt-15) > 0.75 {
		t.Errorf("15pt round trip gave %v", pt)
	}
}

func TestEMU(t *testing.T) {
	if got := PxFromEMU(9525); got != 1 {
		t.Errorf("PxFromEMU(9525) = %v", got)
	}
	if got := PxFromEMU(609600); got != 64 {
		t.Errorf("PxFromEMU(609600) = %v", got)
	}
	if got := EMUFromPx(20); got != 190500 {
		t.Errorf("EMUFromPx(20) = %v", got)
	}
}

func TestOffsetsForDefaults(t *testing.T) {
	off := OffsetsFor(Dimensions{Cols: 4, Rows: 5}, DefaultUnits())
	if len(off.Cols) != 5 || len(off.Rows) != 6 {
		t.Fatalf("table lengths = %d, %d", len(off.Cols), len(off.Rows))
	}
	if off.Cols[4] != 256 {
		t.Errorf("trailing column edge = %v, want 256", off.Cols[4])
	}
	if off.Rows[5] != 100 {
		t.Errorf("trailing row edge = %v, want 100", off.Rows[5])
	}
}

func TestOffsetsMonotonic(t *testing.T) {
	d := Dimensions{
		ColWidths:  map[int]float64{0: 20, 1: -5, 2: math.Inf(1), 3: 0, 5: 2},
		RowHeights: map[int]float64{0: 30, 1: math.NaN(), 2: 0, 4: -1},
		HiddenCols: map[int]bool{6: true},
		HiddenRows: map[int]bool{3: true},
		Cols:       8,
		Rows:       6,
	}
	off := OffsetsFor(d, DefaultUnits())
	for _, table := range [][]float64{off.Cols, off.Rows} {
		for i := 1; i < len(table); i++ {
			if table[i]-table[i-1] < 0 {
				t.Fatalf("offsets decrease at %d: %v", i, table)
			}
		}
	}
	if off.Cols[7] != off.Cols[6] {
		t.Errorf("hidden column should have zero width")
	}
	if off.Rows[4] != off.Rows[3] {
		t.Errorf("hidden row should have zero height")
	}
}

func TestOffsetsSheetDefaults(t *testing.T) {
	off := OffsetsFor(Dimensions{DefaultColWidth: 13, DefaultRowHeight: 30, Cols: 1, Rows: 1}, DefaultUnits())
	if off.Cols[1] != 91 {
		t.Errorf("column = %v, want 91", off.Cols[1])
	}
	if off.Rows[1] != 40 {
		t.Errorf("row = %v, want 40", off.Rows[1])
	}
}

func TestClamping(t *testing.T) {
	off := OffsetsFor(Dimensions{Cols: 3, Rows: 3}, DefaultUnits())

	if i, clamped := off.ClampCol(10); i != 3 || !clamped {
		t.Errorf("ClampCol(10) = %d, %v", i, clamped)
	}
	if i, clamped := off.ClampRow(-1); i != 0 || !clamped {
		t.Errorf("ClampRow(-1) = %d, %v", i, clamped)
	}
	if i, clamped := off.ClampCol(2); i != 2 || clamped {
		t.Errorf("ClampCol(2) = %d, %v", i, clamped)
	}
	if got := off.ColX(99); got != 192 {
		t.Errorf("ColX(99) = %v, want trailing edge 192", got)
	}
}

func TestRangeRect(t *testing.T) {
	off := OffsetsFor(Dimensions{Cols: 6, Rows: 6}, DefaultUnits())
	got := off.RangeRect(2, 2, 3, 4)
	want := Rect{X: 128, Y: 40, W: 192, H: 40}
	if got != want {
		t.Errorf("RangeRect = %+v, want %+v", got, want)
	}
	if cell := off.CellRect(0, 0); cell != (Rect{W: 64, H: 20}) {
		t.Errorf("CellRect(0,0) = %+v", cell)
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 100, H: 50}
	if !r.Contains(Rect{X: 10, Y: 10, W: 100, H: 50}) {
		t.Error("rect should contain itself")
	}
	if r.Contains(Rect{X: 9, Y: 10, W: 10, H: 10}) {
		t.Error("rect should not contain an overhanging rect")
	}
	in := r.Inset(60)
	if in.W != 0 || in.H != 0 {
		t.Errorf("over-inset should collapse to zero size, got %+v", in)
	}
	if b := Between(50, 40, 10, 20); b != (Rect{X: 10, Y: 20, W: 40, H: 20}) {
		t.Errorf("Between = %+v", b)
	}
	if (Rect{X: math.NaN()}).Finite() {
		t.Error("NaN rect reported finite")
	}
}
