package engine

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetcanvas/internal/anchor"
	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/merge"
)

// draft is an element before style resolution: where it sits, how it
// orders and what it was extracted from.
type draft struct {
	kind   Kind
	rect   geometry.Rect
	z      ZKey
	source string

	cell   *xlsx.Cell
	merged bool
	entry  *anchor.Entry
}

// parseGeometry reads the cell grid, decodes the drawing part and builds
// the offset tables and merged regions. The grid covers the data, the
// declared dimension and every merge declaration. Anchor markers may extend
// it by at most GridSlack rows and columns; markers past that are clamped
// when anchors are placed.
func (r *run) parseGeometry() error {
	sh, err := r.wb.Sheet(r.name, r.e.opts.MaxCells)
	if err != nil {
		if errors.Is(err, errors.ErrCodeSheetNotFound) {
			return err
		}
		r.warn("Could not read cells", err)
		sh = &xlsx.Sheet{Name: r.name}
	}
	if sh.Truncated {
		r.warn("Cell scan truncated", fmt.Errorf("stopped after %d cells", r.e.opts.MaxCells))
	}
	r.sheet = sh
	rows, cols := sh.Rows, sh.Cols

	for _, d := range sh.Merges {
		b, err := declBounds(d)
		if err != nil {
			continue
		}
		rows, cols = max(rows, b.BottomRow+1), max(cols, b.RightCol+1)
	}
	rows, cols = min(rows, excelize.TotalRows), min(cols, excelize.MaxColumns)

	part, err := r.wb.Drawing(r.name)
	switch {
	case err != nil:
		r.warn("Ignoring drawing", err)
	case part != nil:
		d, err := anchor.Decode(part.Data)
		if err != nil {
			r.warn("Ignoring drawing "+part.Path, err)
			break
		}
		r.drawing, r.rels = d, part.Rels
		dr, dc := d.Extent()
		rows, cols = growGrid(rows, dr, r.e.opts.GridSlack, excelize.TotalRows), growGrid(cols, dc, r.e.opts.GridSlack, excelize.MaxColumns)
	}

	dims, err := r.wb.Dimensions(r.name, rows, cols)
	if err != nil {
		r.warn("Could not read dimensions", err)
		dims = geometry.Dimensions{Rows: rows, Cols: cols}
	}
	if dims.DefaultColWidth <= 0 {
		dims.DefaultColWidth = r.e.opts.DefaultColWidth
	}
	if dims.DefaultRowHeight <= 0 {
		dims.DefaultRowHeight = r.e.opts.DefaultRowHeight
	}
	r.off = geometry.OffsetsFor(dims, r.e.opts.Units)
	r.regions = merge.Resolve(sh.Merges, r.off, r.logger)

	r.res.Rows, r.res.Cols = r.off.NumRows(), r.off.NumCols()
	r.res.Bounds = r.off.Bounds()
	r.logger.Debug("Parsed geometry", "sheet", r.name, "rows", r.res.Rows, "cols", r.res.Cols, "merges", len(r.regions))
	return nil
}

// growGrid extends n to cover want, by no more than slack and never past
// limit.
func growGrid(n, want, slack, limit int) int {
	if want > n {
		n = min(want, n+max(slack, 0))
	}
	return min(n, limit)
}

func declBounds(d merge.Decl) (merge.Bounds, error) {
	if d.Bounds != nil {
		return *d.Bounds, nil
	}
	return merge.ParseRef(d.Ref)
}

// extract gathers drafts from the cell scan and the drawing part.
func (r *run) extract() error {
	r.extractCells()
	r.extractDrawing()
	r.logger.Debug("Extracted elements", "sheet", r.name, "drafts", len(r.drafts))
	return nil
}

// extractCells scans cells in row-major order. A merged region is emitted
// once, at the first of its cells the scan meets, with the content and
// formatting of its top-left cell and the rect of the whole region.
func (r *run) extractCells() {
	byPos := make(map[[2]int]*xlsx.Cell, len(r.sheet.Cells))
	for i := range r.sheet.Cells {
		c := &r.sheet.Cells[i]
		byPos[[2]int{c.Row, c.Col}] = c
	}
	cols := max(r.off.NumCols(), 1)
	tracker := merge.NewTracker(r.regions)

	for i := range r.sheet.Cells {
		c := &r.sheet.Cells[i]
		region, first := tracker.Claim(c.Row, c.Col)
		if region != nil && !first {
			continue
		}

		src, row, col := c, c.Row, c.Col
		rect := r.off.CellRect(row, col)
		source := cellRef(row, col)
		if region != nil {
			row, col = region.TopRow, region.LeftCol
			rect, source = region.Rect, region.Ref()
			if tl, ok := byPos[[2]int{row, col}]; ok {
				src = tl
			}
		}
		if rect.Empty() {
			r.logger.Debug("Skipping hidden cell", "sheet", r.name, "cell", source)
			continue
		}

		z := row*cols + col
		if src.Fill.Visible() {
			r.add(draft{kind: KindBackground, rect: rect, z: ZKey{Layer: LayerBackground, Order: z}, source: source, cell: src, merged: region != nil})
		}
		if src.Borders.Any() {
			r.add(draft{kind: KindBorder, rect: rect, z: ZKey{Layer: LayerBorder, Order: z}, source: source, cell: src, merged: region != nil})
		}
		if strings.TrimSpace(src.Value) != "" {
			r.add(draft{kind: KindCellText, rect: rect, z: ZKey{Layer: LayerCellText, Order: z}, source: source, cell: src, merged: region != nil})
		}
	}
}

// extractDrawing resolves the anchors of the drawing part. Drawing objects
// keep their document order as z order.
func (r *run) extractDrawing() {
	if r.drawing == nil {
		return
	}
	opts := r.e.opts.Anchors
	opts.Theme = r.theme
	res := anchor.Parse(r.name, r.drawing, r.rels, r.off, opts, r.logger)
	r.res.Skips = append(r.res.Skips, res.Skips...)

	r.entries = make(map[string]*anchor.Entry, len(res.Entries))
	for i := range res.Entries {
		e := &res.Entries[i]
		source := fmt.Sprintf("anchor/%d/%d", e.Index, e.Sub)
		r.entries[source] = e
		kind := KindTextBox
		if e.Object == anchor.ObjectPicture {
			kind = KindPicture
		}
		r.add(draft{
			kind:   kind,
			rect:   e.Rect,
			z:      ZKey{Layer: LayerDrawing, Order: e.Index, Seq: e.Sub},
			source: source,
			entry:  e,
		})
	}
}

func (r *run) add(d draft) {
	r.drafts = append(r.drafts, d)
}

func cellRef(row, col int) string {
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row+1, col+1)
	}
	return ref
}
