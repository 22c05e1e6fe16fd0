// Package merge resolves merged-cell declarations into pixel regions and
// tracks which regions a cell scan has already emitted.
package merge

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetcanvas/internal/geometry"
)

// Bounds is an inclusive, zero-based cell range.
type Bounds struct {
	TopRow    int `json:"topRow" yaml:"topRow"`
	LeftCol   int `json:"leftCol" yaml:"leftCol"`
	BottomRow int `json:"bottomRow" yaml:"bottomRow"`
	RightCol  int `json:"rightCol" yaml:"rightCol"`
}

// Contains reports whether (row, col) lies inside b.
func (b Bounds) Contains(row, col int) bool {
	return row >= b.TopRow && row <= b.BottomRow && col >= b.LeftCol && col <= b.RightCol
}

// Overlaps reports whether b and o share at least one cell.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.TopRow <= o.BottomRow && o.TopRow <= b.BottomRow &&
		b.LeftCol <= o.RightCol && o.LeftCol <= b.RightCol
}

// Key returns a stable identifier for the range, usable as a dedup key.
func (b Bounds) Key() string {
	return fmt.Sprintf("R%dC%d:R%dC%d", b.TopRow, b.LeftCol, b.BottomRow, b.RightCol)
}

// Ref returns the range in A1 notation.
func (b Bounds) Ref() string {
	tl, err1 := excelize.CoordinatesToCellName(b.LeftCol+1, b.TopRow+1)
	br, err2 := excelize.CoordinatesToCellName(b.RightCol+1, b.BottomRow+1)
	if err1 != nil || err2 != nil {
		return b.Key()
	}
	return tl + ":" + br
}

func (b Bounds) normalized() Bounds {
	if b.BottomRow < b.TopRow {
		b.TopRow, b.BottomRow = b.BottomRow, b.TopRow
	}
	if b.RightCol < b.LeftCol {
		b.LeftCol, b.RightCol = b.RightCol, b.LeftCol
	}
	return b
}

// ParseRef parses an A1-style range such as "A1:C3", "$B$2:$D$4" or a
// single cell "B2" into zero-based bounds.
func ParseRef(ref string) (Bounds, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return Bounds{}, fmt.Errorf("empty range reference")
	}
	start, end, found := strings.Cut(ref, ":")
	if !found {
		end = start
	}
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	return Bounds{TopRow: r1 - 1, LeftCol: c1 - 1, BottomRow: r2 - 1, RightCol: c2 - 1}.normalized(), nil
}

// Decl is one merged-range declaration, given either as A1 notation or as
// structured bounds. Bounds wins when both are set.
type Decl struct {
	Ref    string
	Bounds *Bounds
}

func (d Decl) bounds() (Bounds, error) {
	if d.Bounds != nil {
		b := d.Bounds.normalized()
		if b.TopRow < 0 || b.LeftCol < 0 {
			return Bounds{}, fmt.Errorf("negative bounds %s", b.Key())
		}
		return b, nil
	}
	return ParseRef(d.Ref)
}

// Region is a merged range with its pixel rectangle.
type Region struct {
	Bounds
	Rect geometry.Rect `json:"pixelRect" yaml:"pixelRect"`
}

// Resolve turns declarations into regions. Invalid declarations and any
// declaration overlapping an earlier one are dropped and logged, so the
// returned regions never overlap. Single-cell ranges are kept.
func Resolve(decls []Decl, off geometry.Offsets, logger *log.Logger) []Region {
	regions := make([]Region, 0, len(decls))
	for i, d := range decls {
		b, err := d.bounds()
		if err != nil {
			logger.Warn("Skipping merged range", "index", i, "ref", d.Ref, "err", err)
			continue
		}
		if overlapsAny(b, regions) {
			logger.Warn("Skipping overlapping merged range", "index", i, "range", b.Ref())
			continue
		}
		regions = append(regions, Region{
			Bounds: b,
			Rect:   off.RangeRect(b.TopRow, b.LeftCol, b.BottomRow, b.RightCol),
		})
	}
	return regions
}

func overlapsAny(b Bounds, regions []Region) bool {
	for _, r := range regions {
		if r.Overlaps(b) {
			return true
		}
	}
	return false
}

// Find returns the region covering (row, col), or nil. It is a linear scan;
// merged regions are few compared with cells.
func Find(row, col int, regions []Region) *Region {
	for i := range regions {
		if regions[i].Contains(row, col) {
			return &regions[i]
		}
	}
	return nil
}

// Extent returns the number of rows and columns needed to cover every region.
func Extent(regions []Region) (rows, cols int) {
	for _, r := range regions {
		rows = max(rows, r.BottomRow+1)
		cols = max(cols, r.RightCol+1)
	}
	return rows, cols
}
