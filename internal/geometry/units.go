// Package geometry converts spreadsheet grid units into pixels and builds the
// cumulative offset tables every other layout stage indexes into.
//
// Three unit systems meet here: column widths in character units, row heights
// in points, and drawing coordinates in EMUs (English Metric Units).
package geometry

import "math"

// EMUPerPixel is the number of EMUs per pixel at 96 DPI (914400 EMU per inch / 96).
const EMUPerPixel = 9525

const (
	pixelsPerInch = 96.0
	pointsPerInch = 72.0
)

// Sheet defaults used when a workbook declares nothing.
const (
	// DefaultCharPixelWidth is the maximum digit width of Calibri 11 at 96 DPI.
	DefaultCharPixelWidth = 7.0
	// DefaultColumnPadding is the rounding term of the column width formula (18/256 of a character).
	DefaultColumnPadding = 18.0 / 256.0
	// DefaultColWidth is the stored width of a default column, in characters.
	DefaultColWidth = 9.140625
	// DefaultRowHeight is the default row height in points.
	DefaultRowHeight = 15.0
)

// PxFromPoints converts points to pixels.
func PxFromPoints(pt float64) float64 {
	return pt * pixelsPerInch / pointsPerInch
}

// PointsFromPx converts pixels to points.
func PointsFromPx(px float64) float64 {
	return px * pointsPerInch / pixelsPerInch
}

// PxFromEMU converts EMUs to pixels.
func PxFromEMU(emu int64) float64 {
	return float64(emu) / EMUPerPixel
}

// EMUFromPx converts pixels to EMUs, rounding to the nearest unit.
func EMUFromPx(px float64) int64 {
	return int64(math.Round(px * EMUPerPixel))
}

// Units holds the column width conversion constants.
type Units struct {
	CharPixelWidth float64
	ColumnPadding  float64
}

// DefaultUnits returns the constants matching the default Office font.
func DefaultUnits() Units {
	return Units{CharPixelWidth: DefaultCharPixelWidth, ColumnPadding: DefaultColumnPadding}
}

// ColumnPixels converts a stored column width to whole pixels using
// floor((width + padding) * charPixelWidth). Non-positive or non-finite widths
// yield 0.
func (u Units) ColumnPixels(width float64) float64 {
	if width <= 0 || !isFinite(width) {
		return 0
	}
	charPx := u.CharPixelWidth
	if charPx <= 0 || !isFinite(charPx) {
		charPx = DefaultCharPixelWidth
	}
	return math.Floor((width + u.ColumnPadding) * charPx)
}

// RowPixels converts a row height in points to pixels. Non-positive or
// non-finite heights yield 0.
func RowPixels(heightPt float64) float64 {
	if heightPt <= 0 || !isFinite(heightPt) {
		return 0
	}
	return PxFromPoints(heightPt)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
