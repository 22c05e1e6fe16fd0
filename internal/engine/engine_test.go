package engine

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"image/color"
	"io"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/fixture"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/merge"
	"github.com/klytics/sheetcanvas/internal/opc"
	"github.com/klytics/sheetcanvas/internal/style"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

const drawingHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<xdr:wsDr xmlns:xdr="http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`

func drawingXML(anchors ...string) []byte {
	return []byte(drawingHeader + strings.Join(anchors, "\n") + `</xdr:wsDr>`)
}

func gridMarker(tag string, col, row int) string {
	return "<xdr:" + tag + "><xdr:col>" + strconv.Itoa(col) + "</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>" +
		strconv.Itoa(row) + "</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:" + tag + ">"
}

func rangeAnchor(fromCol, fromRow, toCol, toRow int, obj string) string {
	return "<xdr:twoCellAnchor>" + gridMarker("from", fromCol, fromRow) + gridMarker("to", toCol, toRow) +
		obj + "<xdr:clientData/></xdr:twoCellAnchor>"
}

func pointAnchor(col, row int, obj string) string {
	return "<xdr:oneCellAnchor>" + gridMarker("from", col, row) + obj + "<xdr:clientData/></xdr:oneCellAnchor>"
}

func picXML(id int, name, rid string, hidden bool) string {
	h := ""
	if hidden {
		h = ` hidden="1"`
	}
	return `<xdr:pic><xdr:nvPicPr><xdr:cNvPr id="` + strconv.Itoa(id) + `" name="` + name + `"` + h +
		`/><xdr:cNvPicPr/></xdr:nvPicPr><xdr:blipFill><a:blip r:embed="` + rid +
		`"/></xdr:blipFill><xdr:spPr><a:prstGeom prst="rect"/></xdr:spPr></xdr:pic>`
}

const noteXML = `<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="5" name="Note"/><xdr:cNvSpPr txBox="1"/></xdr:nvSpPr>` +
	`<xdr:spPr><a:solidFill><a:srgbClr val="FFFF00"/></a:solidFill></xdr:spPr>` +
	`<xdr:txBody><a:bodyPr anchor="ctr"/><a:p><a:pPr algn="ctr"/><a:r><a:rPr sz="1400" b="1"/><a:t>Hello</a:t></a:r></a:p></xdr:txBody></xdr:sp>`

const imagePart = "xl/media/image1.png"

// memWorkbook serves one sheet on a uniform 64x20 grid from memory.
type memWorkbook struct {
	sheet   *xlsx.Sheet
	drawing *xlsx.DrawingPart
	drawErr error
	media   map[string][]byte
}

func (m *memWorkbook) SheetNames() []string { return []string{m.sheet.Name} }

func (m *memWorkbook) Sheet(name string, _ int) (*xlsx.Sheet, error) {
	if name != m.sheet.Name {
		return nil, errors.New(errors.ErrCodeSheetNotFound, "sheet %q not found", name)
	}
	s := *m.sheet
	return &s, nil
}

func (m *memWorkbook) Dimensions(_ string, rows, cols int) (geometry.Dimensions, error) {
	return geometry.Dimensions{Rows: rows, Cols: cols}, nil
}

func (m *memWorkbook) Drawing(string) (*xlsx.DrawingPart, error) {
	return m.drawing, m.drawErr
}

func (m *memWorkbook) Media(part string) ([]byte, error) {
	data, ok := m.media[part]
	if !ok {
		return nil, errors.New(errors.ErrCodePartNotFound, "part %s not found", part)
	}
	return data, nil
}

func (m *memWorkbook) Theme() *style.Theme { return style.DefaultTheme() }

func solid(rgb style.RGB) style.Fill {
	return style.Fill{Kind: style.PaintSolid, Color: style.Opaque(rgb)}
}

func textCell(row, col int, value string) xlsx.Cell {
	return xlsx.Cell{
		Row:    row,
		Col:    col,
		Value:  value,
		Fill:   style.NoFill,
		Font:   xlsx.Font{SizePt: 11, Color: style.Opaque(style.DefaultTextColor)},
		HAlign: textfit.AlignLeft,
		VAlign: textfit.AlignBottom,
	}
}

func newWorkbook(cells []xlsx.Cell, merges []string, anchors ...string) *memWorkbook {
	s := &xlsx.Sheet{Name: "Sheet1", Cells: cells}
	for _, c := range cells {
		s.Rows, s.Cols = max(s.Rows, c.Row+1), max(s.Cols, c.Col+1)
	}
	for _, m := range merges {
		s.Merges = append(s.Merges, merge.Decl{Ref: m})
	}
	wb := &memWorkbook{sheet: s, media: map[string][]byte{
		imagePart: fixture.PNG(100, 50, color.Black),
	}}
	if len(anchors) > 0 {
		wb.drawing = &xlsx.DrawingPart{
			Path: "xl/drawings/drawing1.xml",
			Data: drawingXML(anchors...),
			Rels: opc.Relationships{
				"rId1": {ID: "rId1", Path: imagePart},
				"rId2": {ID: "rId2", Path: "https://example.com/logo.png", External: true},
				"rId3": {ID: "rId3", Path: "xl/media/broken.png"},
			},
		}
	}
	return wb
}

func newEngine() *Engine {
	return New(textfit.FixedMeasurer{CharWidth: 0.5, LineRatio: 1.2}, DefaultOptions(), logging.Discard())
}

func convert(t *testing.T, wb Workbook) *Result {
	t.Helper()
	res, err := newEngine().Convert(context.Background(), wb, "Sheet1")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.State != StateDone {
		t.Fatalf("expected state done, got %s", res.State)
	}
	return res
}

func ofKind(res *Result, kind Kind) []Element {
	var out []Element
	for _, e := range res.Elements {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestMergedRegionEmitsOnce(t *testing.T) {
	total := textCell(2, 2, "Total")
	total.Fill = solid(style.RGB{R: 0xFF, G: 0xFF})
	inside := textCell(3, 3, "")
	inside.Fill = solid(style.RGB{R: 0xFF})

	res := convert(t, newWorkbook([]xlsx.Cell{total, inside}, []string{"C3:E4"}))

	want := geometry.Rect{X: 128, Y: 40, W: 192, H: 40}
	texts := ofKind(res, KindCellText)
	if len(texts) != 1 {
		t.Fatalf("expected 1 text element, got %d", len(texts))
	}
	if texts[0].Rect != want {
		t.Errorf("expected text rect %+v, got %+v", want, texts[0].Rect)
	}
	ct := texts[0].Payload.(CellText)
	if ct.Text != "Total" || !ct.Merged {
		t.Errorf("unexpected payload %+v", ct)
	}
	if texts[0].Source != "C3:E4" {
		t.Errorf("expected source C3:E4, got %q", texts[0].Source)
	}

	bgs := ofKind(res, KindBackground)
	if len(bgs) != 1 {
		t.Fatalf("expected 1 background, got %d", len(bgs))
	}
	if bgs[0].Rect != want {
		t.Errorf("expected background rect %+v, got %+v", want, bgs[0].Rect)
	}
	if got := bgs[0].Payload.(Background).Palette; got != style.PaletteYellow {
		t.Errorf("expected yellow background, got %s", got)
	}
}

func TestMergedRegionWithoutTopLeftCell(t *testing.T) {
	inner := textCell(3, 4, "")
	inner.Fill = solid(style.RGB{B: 0xFF})

	res := convert(t, newWorkbook([]xlsx.Cell{inner}, []string{"C3:E4"}))

	bgs := ofKind(res, KindBackground)
	if len(bgs) != 1 {
		t.Fatalf("expected 1 background, got %d", len(bgs))
	}
	if want := (geometry.Rect{X: 128, Y: 40, W: 192, H: 40}); bgs[0].Rect != want {
		t.Errorf("expected region rect %+v, got %+v", want, bgs[0].Rect)
	}
}

func TestZOrder(t *testing.T) {
	header := textCell(0, 0, "Name")
	header.Fill = solid(style.RGB{R: 0x44, G: 0x72, B: 0xC4})
	header.Borders = xlsx.Borders{Bottom: style.Stroke{Kind: style.PaintSolid, Color: style.Opaque(style.DefaultStrokeColor), WidthPx: 1}}

	res := convert(t, newWorkbook(
		[]xlsx.Cell{header, textCell(1, 0, "Value")},
		nil,
		rangeAnchor(0, 6, 2, 8, noteXML),
		rangeAnchor(1, 1, 3, 4, picXML(2, "Logo", "rId1", false)),
	))

	var kinds []Kind
	for i, e := range res.Elements {
		kinds = append(kinds, e.Kind)
		if i > 0 && e.Z.Less(res.Elements[i-1].Z) {
			t.Errorf("element %d out of order: %+v before %+v", i, res.Elements[i-1].Z, e.Z)
		}
	}
	want := []Kind{KindBackground, KindBorder, KindTextBox, KindPicture, KindCellText, KindCellText}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("expected kinds %v, got %v", want, kinds)
	}
}

func TestRangeAnchoredPicture(t *testing.T) {
	res := convert(t, newWorkbook(nil, nil, rangeAnchor(1, 1, 3, 4, picXML(2, "Logo", "rId1", false))))

	pics := ofKind(res, KindPicture)
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d", len(pics))
	}
	p := pics[0].Payload.(Picture)
	if want := (geometry.Rect{X: 64, Y: 20, W: 128, H: 60}); p.Frame != want {
		t.Errorf("expected frame %+v, got %+v", want, p.Frame)
	}
	if p.NaturalW != 100 || p.NaturalH != 50 || p.Format != "png" {
		t.Errorf("unexpected natural size %dx%d %s", p.NaturalW, p.NaturalH, p.Format)
	}
	if want := (geometry.Rect{X: 78, Y: 25, W: 100, H: 50}); pics[0].Rect != want {
		t.Errorf("expected fitted rect %+v, got %+v", want, pics[0].Rect)
	}
	if p.Target != imagePart {
		t.Errorf("expected target %s, got %s", imagePart, p.Target)
	}
}

func TestPointAnchoredPictureUsesNaturalSize(t *testing.T) {
	res := convert(t, newWorkbook(nil, nil, pointAnchor(2, 3, picXML(2, "Logo", "rId1", false))))

	pics := ofKind(res, KindPicture)
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d", len(pics))
	}
	if want := (geometry.Rect{X: 128, Y: 60, W: 100, H: 50}); pics[0].Rect != want {
		t.Errorf("expected %+v, got %+v", want, pics[0].Rect)
	}
}

func TestHiddenAnchorIsSkipped(t *testing.T) {
	res := convert(t, newWorkbook(nil, nil,
		rangeAnchor(1, 1, 3, 4, picXML(2, "Secret", "rId1", true)),
		rangeAnchor(4, 1, 6, 4, picXML(3, "Shown", "rId1", false)),
	))

	pics := ofKind(res, KindPicture)
	if len(pics) != 1 || pics[0].Payload.(Picture).Name != "Shown" {
		t.Fatalf("expected only the visible picture, got %+v", pics)
	}
	if len(res.Skips) != 1 {
		t.Fatalf("expected 1 skip, got %+v", res.Skips)
	}
	if res.Skips[0].Reason != "hidden" || res.Skips[0].Name != "Secret" {
		t.Errorf("unexpected skip %+v", res.Skips[0])
	}
}

func TestUnavailablePicturesAreAbsent(t *testing.T) {
	wb := newWorkbook(nil, nil,
		rangeAnchor(1, 1, 3, 4, picXML(2, "Remote", "rId2", false)),
		rangeAnchor(1, 5, 3, 8, picXML(3, "Dangling", "rId9", false)),
		rangeAnchor(1, 9, 3, 12, picXML(4, "Missing", "rId3", false)),
		pointAnchor(5, 1, picXML(5, "Garbage", "rId1", false)),
	)
	wb.media[imagePart] = []byte("not an image")

	res := convert(t, wb)

	if n := res.Count(KindPicture); n != 0 {
		t.Errorf("expected no rendered pictures, got %d", n)
	}
	want := []string{AbsentExternal, AbsentUnresolved, AbsentMissing, AbsentUndecoded}
	if len(res.Absent) != len(want) {
		t.Fatalf("expected %d absent elements, got %+v", len(want), res.Absent)
	}
	for i, a := range res.Absent {
		if a.Reason != want[i] {
			t.Errorf("absent %d: expected %s, got %s", i, want[i], a.Reason)
		}
		if a.Element.Kind != KindPicture {
			t.Errorf("absent %d: expected picture, got %s", i, a.Element.Kind)
		}
	}
	if rect := res.Absent[3].Element.Rect; rect.W != 0 || rect.H != 0 {
		t.Errorf("expected no guessed size for an undecodable point picture, got %+v", rect)
	}
}

func TestTextBox(t *testing.T) {
	res := convert(t, newWorkbook(nil, nil, rangeAnchor(0, 6, 2, 8, noteXML)))

	boxes := ofKind(res, KindTextBox)
	if len(boxes) != 1 {
		t.Fatalf("expected 1 text box, got %d", len(boxes))
	}
	tb := boxes[0].Payload.(TextBox)
	if tb.Text != "Hello" {
		t.Errorf("expected 'Hello', got %q", tb.Text)
	}
	if tb.Fill.Color.RGB.Hex() != "FFFF00" || tb.FillPalette != style.PaletteYellow {
		t.Errorf("unexpected fill %+v / %s", tb.Fill, tb.FillPalette)
	}
	if tb.Font.SizePt != 14 || !tb.Font.Bold {
		t.Errorf("unexpected font %+v", tb.Font)
	}
	if tb.HAlign != textfit.AlignCenter || tb.VAlign != textfit.AlignMiddle {
		t.Errorf("expected centered text, got %s/%s", tb.HAlign, tb.VAlign)
	}
	if tb.Placement == nil || !boxes[0].Rect.Contains(tb.Placement.Rect) {
		t.Errorf("expected placement inside the box, got %+v", tb.Placement)
	}
}

func TestCellTextShrinksToFit(t *testing.T) {
	long := textCell(0, 0, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	long.Wrap = true

	res := convert(t, newWorkbook([]xlsx.Cell{long}, nil))

	texts := ofKind(res, KindCellText)
	if len(texts) != 1 {
		t.Fatalf("expected 1 text, got %d", len(texts))
	}
	ct := texts[0].Payload.(CellText)
	if ct.Font.SizePt >= 11 {
		t.Errorf("expected the font to shrink, got %dpt", ct.Font.SizePt)
	}
	if ct.Font.SizePt < DefaultOptions().Text.MinPt {
		t.Errorf("font below minimum: %dpt", ct.Font.SizePt)
	}
	if ct.Placement == nil || len(ct.Placement.Lines) < 2 {
		t.Errorf("expected wrapped lines, got %+v", ct.Placement)
	}
}

func TestHiddenRowsProduceNoElements(t *testing.T) {
	wb := newWorkbook([]xlsx.Cell{textCell(0, 0, "shown"), textCell(1, 0, "hidden")}, nil)
	res, err := New(nil, DefaultOptions(), logging.Discard()).Convert(context.Background(), hiddenRow{wb}, "Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	texts := ofKind(res, KindCellText)
	if len(texts) != 1 || texts[0].Source != "A1" {
		t.Errorf("expected only A1, got %+v", texts)
	}
}

type hiddenRow struct{ *memWorkbook }

func (h hiddenRow) Dimensions(_ string, rows, cols int) (geometry.Dimensions, error) {
	return geometry.Dimensions{Rows: rows, Cols: cols, HiddenRows: map[int]bool{1: true}}, nil
}

func TestDeterministic(t *testing.T) {
	build := func() *memWorkbook {
		c := textCell(2, 2, "Total")
		c.Fill = solid(style.RGB{G: 0x80})
		return newWorkbook([]xlsx.Cell{c, textCell(0, 0, "Name")}, []string{"C3:E4"},
			rangeAnchor(1, 1, 3, 4, picXML(2, "Logo", "rId1", false)),
			rangeAnchor(0, 6, 2, 8, noteXML))
	}
	a := convert(t, build())
	b := convert(t, build())
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical results for identical input")
	}
	seen := make(map[string]bool)
	for _, e := range a.Elements {
		if seen[e.ID] {
			t.Errorf("duplicate element ID %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestUnknownSheet(t *testing.T) {
	res, err := newEngine().Convert(context.Background(), newWorkbook(nil, nil), "Missing")
	if !errors.Is(err, errors.ErrCodeSheetNotFound) {
		t.Fatalf("expected SHEET_NOT_FOUND, got %v", err)
	}
	if res == nil || res.State != StateFailed {
		t.Errorf("expected failed result, got %+v", res)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newEngine().Convert(ctx, newWorkbook(nil, nil), "Sheet1")
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.State != StateFailed {
		t.Errorf("expected failed state, got %s", res.State)
	}
}

func TestBrokenDrawingKeepsCells(t *testing.T) {
	wb := newWorkbook([]xlsx.Cell{textCell(0, 0, "kept")}, nil)
	wb.drawing = &xlsx.DrawingPart{Path: "xl/drawings/drawing1.xml", Data: []byte("<xdr:wsDr><unclosed>")}

	res := convert(t, wb)
	if res.Count(KindCellText) != 1 {
		t.Errorf("expected the cell text to survive, got %+v", res.Elements)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", res.Warnings)
	}
}

func TestDrawingErrorIsWarning(t *testing.T) {
	wb := newWorkbook([]xlsx.Cell{textCell(0, 0, "kept")}, nil)
	wb.drawErr = errors.New(errors.ErrCodeUnresolvedRelationship, "drawing relationship rId1 does not resolve")

	res := convert(t, wb)
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "rId1") {
		t.Errorf("expected a drawing warning, got %v", res.Warnings)
	}
}

func TestConvertFixture(t *testing.T) {
	data, err := fixture.Workbook()
	if err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.OpenBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	results, err := newEngine().ConvertAll(context.Background(), f)
	if err != nil {
		t.Fatalf("ConvertAll failed: %v", err)
	}
	if len(results) != 2 || results[0].Sheet != fixture.ReportSheet || results[1].Sheet != fixture.NotesSheet {
		t.Fatalf("unexpected results: %d", len(results))
	}
	report := results[0]

	var total *Element
	for i, e := range report.Elements {
		if e.Kind == KindCellText && e.Payload.(CellText).Text == "Total" {
			if total != nil {
				t.Fatal("expected one Total text")
			}
			total = &report.Elements[i]
		}
	}
	if total == nil {
		t.Fatal("expected a Total text")
	}
	// Column A is 20 characters (140px); row 2 is 30pt (40px).
	if want := (geometry.Rect{X: 204, Y: 60, W: 192, H: 40}); total.Rect != want {
		t.Errorf("expected merged rect %+v, got %+v", want, total.Rect)
	}

	if n := report.Count(KindBackground); n != 2 {
		t.Errorf("expected 2 header backgrounds, got %d", n)
	}
	if n := report.Count(KindBorder); n != 2 {
		t.Errorf("expected 2 header borders, got %d", n)
	}

	pics := ofKind(report, KindPicture)
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d (absent %+v)", len(pics), report.Absent)
	}
	p := pics[0].Payload.(Picture)
	if p.Descr != "Logo" {
		t.Errorf("expected alt text Logo, got %q", p.Descr)
	}
	if p.Frame.X != 460 || p.Frame.Y != 140 || p.Frame.W != 100 {
		t.Errorf("unexpected frame %+v", p.Frame)
	}
	if !p.Frame.Contains(pics[0].Rect) {
		t.Errorf("picture %+v escapes its frame %+v", pics[0].Rect, p.Frame)
	}
	if pics[0].Rect.W > 100 || pics[0].Rect.H > 50 {
		t.Errorf("picture upscaled: %+v", pics[0].Rect)
	}

	boxes := ofKind(results[1], KindTextBox)
	if len(boxes) != 1 || boxes[0].Payload.(TextBox).Text != "Draft" {
		t.Errorf("expected the Draft shape, got %+v", boxes)
	}
}

// patchDrawing rewrites one drawing part of a workbook, appending anchors
// before the closing root element.
func patchDrawing(t *testing.T, data []byte, part string, anchors ...string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	patched := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		if f.Name == part {
			closing := []byte("</xdr:wsDr>")
			if !bytes.Contains(body, closing) {
				t.Fatalf("%s has no closing wsDr element", part)
			}
			body = bytes.Replace(body, closing, []byte(strings.Join(anchors, "")+"</xdr:wsDr>"), 1)
			patched = true
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if !patched {
		t.Fatalf("part %s not found", part)
	}
	return buf.Bytes()
}

func TestOutOfGridAnchorKeepsSheetGeometry(t *testing.T) {
	data, err := fixture.Workbook()
	if err != nil {
		t.Fatal(err)
	}
	data = patchDrawing(t, data, "xl/drawings/drawing1.xml", rangeAnchor(2, 1, 20000, 3_000_000, noteXML))
	f, err := xlsx.OpenBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	res, err := newEngine().Convert(context.Background(), f, fixture.ReportSheet)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
	if res.Cols > 1000 || res.Rows > 1000 {
		t.Errorf("grid grew to %d x %d", res.Rows, res.Cols)
	}

	var a1 *Element
	for i, e := range res.Elements {
		if e.Kind == KindBackground && e.Source == "A1" {
			a1 = &res.Elements[i]
		}
	}
	if a1 == nil {
		t.Fatal("expected an A1 background")
	}
	if want := (geometry.Rect{X: 0, Y: 0, W: 140, H: 20}); a1.Rect != want {
		t.Errorf("expected A1 at %+v, got %+v", want, a1.Rect)
	}

	g, err := newEngine().Inspect(context.Background(), f, fixture.ReportSheet)
	if err != nil {
		t.Fatal(err)
	}
	var clamped int
	for _, e := range g.Anchors {
		if e.Clamped {
			clamped++
			if e.Rect.Right() != g.Offsets.Bounds().Right() || e.Rect.Bottom() != g.Offsets.Bounds().Bottom() {
				t.Errorf("expected clamped anchor to end at the grid edge, got %+v", e.Rect)
			}
		}
	}
	if clamped != 1 {
		t.Errorf("expected 1 clamped anchor, got %d", clamped)
	}
}

func TestGrowGrid(t *testing.T) {
	tests := []struct {
		name                  string
		n, want, slack, limit int
		expected              int
	}{
		{"covered", 10, 5, 256, 100, 10},
		{"within slack", 10, 40, 256, 1000, 40},
		{"past slack", 10, 20000, 256, 16384, 266},
		{"past limit", 10, 3_000_000, 5_000_000, 1_048_576, 1_048_576},
		{"negative slack", 10, 40, -1, 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := growGrid(tt.n, tt.want, tt.slack, tt.limit); got != tt.expected {
				t.Errorf("growGrid(%d, %d, %d, %d) = %d, want %d", tt.n, tt.want, tt.slack, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	wb := newWorkbook(
		[]xlsx.Cell{textCell(0, 0, "A")},
		[]string{"C3:E4"},
		rangeAnchor(1, 1, 3, 4, picXML(2, "Logo", "rId1", false)),
	)
	g, err := newEngine().Inspect(context.Background(), wb, "Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Regions) != 1 || g.Regions[0].Ref() != "C3:E4" {
		t.Errorf("unexpected regions %+v", g.Regions)
	}
	if len(g.Anchors) != 1 || g.Anchors[0].Name != "Logo" {
		t.Errorf("unexpected anchors %+v", g.Anchors)
	}
	if g.Offsets.ColX(1) != 64 || g.Offsets.RowY(1) != 20 {
		t.Errorf("unexpected offsets %v / %v", g.Offsets.ColX(1), g.Offsets.RowY(1))
	}

	if _, err := newEngine().Inspect(context.Background(), wb, "Missing"); !errors.Is(err, errors.ErrCodeSheetNotFound) {
		t.Errorf("expected SHEET_NOT_FOUND, got %v", err)
	}
}
