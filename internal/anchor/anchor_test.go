package anchor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/opc"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<xdr:wsDr xmlns:xdr="http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006">`

const footer = `</xdr:wsDr>`

func drawing(anchors ...string) []byte {
	return []byte(header + strings.Join(anchors, "\n") + footer)
}

func cellMarker(tag string, col, row int) string {
	return "<xdr:" + tag + "><xdr:col>" + itoa(col) + "</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>" +
		itoa(row) + "</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:" + tag + ">"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for ; n > 0; n /= 10 {
		b = append([]byte{byte('0' + n%10)}, b...)
	}
	return string(b)
}

func twoCell(fromCol, fromRow, toCol, toRow int, body string) string {
	return `<xdr:twoCellAnchor editAs="oneCell">` + cellMarker("from", fromCol, fromRow) + cellMarker("to", toCol, toRow) +
		body + `<xdr:clientData/></xdr:twoCellAnchor>`
}

func pic(id int, name, rel string) string {
	return `<xdr:pic><xdr:nvPicPr><xdr:cNvPr id="` + itoa(id) + `" name="` + name + `"/><xdr:cNvPicPr/></xdr:nvPicPr>` +
		`<xdr:blipFill><a:blip r:embed="` + rel + `"/><a:stretch><a:fillRect/></a:stretch></xdr:blipFill>` +
		`<xdr:spPr><a:prstGeom prst="rect"/></xdr:spPr></xdr:pic>`
}

func solidShape(id int, name, extra string) string {
	return `<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="` + itoa(id) + `" name="` + name + `"` + extra + `/><xdr:cNvSpPr/></xdr:nvSpPr>` +
		`<xdr:spPr><a:prstGeom prst="rect"/><a:solidFill><a:srgbClr val="4472C4"/></a:solidFill></xdr:spPr></xdr:sp>`
}

// uniformOffsets gives 64px columns and 20px rows.
func uniformOffsets(cols, rows int) geometry.Offsets {
	return geometry.OffsetsFor(geometry.Dimensions{Cols: cols, Rows: rows}, geometry.DefaultUnits())
}

func testRels() opc.Relationships {
	return opc.Relationships{
		"rId1": {ID: "rId1", Type: "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image", Path: "xl/media/image1.png"},
		"rId2": {ID: "rId2", Path: "https://example.com/logo.png", External: true},
	}
}

func parse(t *testing.T, data []byte) Result {
	t.Helper()
	res, err := ParseAnchors("Sheet1", data, testRels(), uniformOffsets(10, 10), DefaultOptions(), logging.Discard())
	if err != nil {
		t.Fatalf("ParseAnchors: %v", err)
	}
	return res
}

func TestRangeAnchorRect(t *testing.T) {
	res := parse(t, drawing(twoCell(1, 1, 3, 4, pic(2, "Picture 1", "rId1"))))
	if len(res.Entries) != 1 {
		t.Fatalf("got %d entries, want 1 (skips %+v)", len(res.Entries), res.Skips)
	}
	e := res.Entries[0]
	want := geometry.Rect{X: 64, Y: 20, W: 128, H: 60}
	if e.Rect != want {
		t.Errorf("Rect = %+v, want %+v", e.Rect, want)
	}
	if e.Kind != KindRange || e.Object != ObjectPicture || !e.SizeKnown {
		t.Errorf("entry = %+v", e)
	}
	if e.EditAs != "oneCell" || e.Name != "Picture 1" || e.ID != 2 {
		t.Errorf("metadata = %q %q %d", e.EditAs, e.Name, e.ID)
	}
	if e.RelationshipID != "rId1" || e.TargetPath != "xl/media/image1.png" || e.External {
		t.Errorf("relationship = %q -> %q external=%v", e.RelationshipID, e.TargetPath, e.External)
	}
}

func TestRangeAnchorOffsets(t *testing.T) {
	// 9525 EMU per pixel: colOff 95250 is 10px, rowOff 47625 is 5px.
	a := `<xdr:twoCellAnchor><xdr:from><xdr:col>0</xdr:col><xdr:colOff>95250</xdr:colOff><xdr:row>0</xdr:row><xdr:rowOff>47625</xdr:rowOff></xdr:from>` +
		cellMarker("to", 2, 2) + pic(1, "p", "rId1") + `<xdr:clientData/></xdr:twoCellAnchor>`
	res := parse(t, drawing(a))
	want := geometry.Rect{X: 10, Y: 5, W: 118, H: 35}
	if len(res.Entries) != 1 || res.Entries[0].Rect != want {
		t.Fatalf("entries = %+v, want rect %+v", res.Entries, want)
	}
}

func TestHiddenAnchorIsSkippedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, log.InfoLevel)
	data := drawing(
		twoCell(0, 0, 2, 2, solidShape(3, "Secret", ` hidden="1"`)),
		twoCell(0, 0, 2, 2, solidShape(4, "Visible", "")),
	)
	res, err := ParseAnchors("Sheet1", data, nil, uniformOffsets(10, 10), DefaultOptions(), logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Name != "Visible" {
		t.Fatalf("entries = %+v", res.Entries)
	}
	if len(res.Skips) != 1 {
		t.Fatalf("skips = %+v", res.Skips)
	}
	s := res.Skips[0]
	if s.Reason != ReasonHidden || s.Name != "Secret" || s.Index != 0 || s.Sheet != "Sheet1" {
		t.Errorf("skip = %+v", s)
	}
	out := buf.String()
	for _, want := range []string{"WARN", "reason=hidden", "name=Secret", "sheet=Sheet1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSkipReasons(t *testing.T) {
	transparent := `<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="9" name="Ghost"/><xdr:cNvSpPr/></xdr:nvSpPr>` +
		`<xdr:spPr><a:noFill/><a:ln><a:noFill/></a:ln></xdr:spPr></xdr:sp>`
	chart := `<xdr:graphicFrame macro=""><xdr:nvGraphicFramePr><xdr:cNvPr id="5" name="Chart 1"/><xdr:cNvGraphicFramePr/></xdr:nvGraphicFramePr>` +
		`<xdr:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/></xdr:xfrm><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart"/></a:graphic></xdr:graphicFrame>`
	far := `<xdr:absoluteAnchor><xdr:pos x="95250000000" y="0"/><xdr:ext cx="952500" cy="952500"/>` +
		solidShape(7, "Far", "") + `<xdr:clientData/></xdr:absoluteAnchor>`
	noTo := `<xdr:twoCellAnchor>` + cellMarker("from", 0, 0) + solidShape(8, "Broken", "") + `<xdr:clientData/></xdr:twoCellAnchor>`

	res := parse(t, drawing(
		twoCell(1, 1, 1, 1, solidShape(6, "Flat", "")),
		twoCell(0, 0, 3, 3, chart),
		twoCell(0, 0, 3, 3, transparent),
		far,
		noTo,
	))
	if len(res.Entries) != 0 {
		t.Errorf("entries = %+v", res.Entries)
	}
	want := []string{ReasonDegenerate, ReasonUnsupported, ReasonTransparent, ReasonOutOfBounds, ReasonInvalid}
	if len(res.Skips) != len(want) {
		t.Fatalf("skips = %+v", res.Skips)
	}
	for i, s := range res.Skips {
		if s.Reason != want[i] || s.Index != i {
			t.Errorf("skip %d = %+v, want reason %s", i, s, want[i])
		}
	}
}

func TestPointAndAbsoluteAnchors(t *testing.T) {
	oneCell := `<xdr:oneCellAnchor>` + cellMarker("from", 2, 3) + `<xdr:ext cx="952500" cy="476250"/>` +
		solidShape(2, "Box", "") + `<xdr:clientData/></xdr:oneCellAnchor>`
	noExt := `<xdr:oneCellAnchor>` + cellMarker("from", 1, 1) + pic(3, "Logo", "rId1") + `<xdr:clientData/></xdr:oneCellAnchor>`
	abs := `<xdr:absoluteAnchor><xdr:pos x="95250" y="190500"/><xdr:ext cx="190500" cy="95250"/>` +
		`<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="4" name="TextBox 1"/><xdr:cNvSpPr txBox="1"/></xdr:nvSpPr><xdr:spPr/>` +
		`<xdr:txBody><a:bodyPr/><a:p><a:r><a:t>Note</a:t></a:r></a:p></xdr:txBody></xdr:sp><xdr:clientData/></xdr:absoluteAnchor>`

	res := parse(t, drawing(oneCell, noExt, abs))
	if len(res.Entries) != 3 {
		t.Fatalf("entries = %+v skips = %+v", res.Entries, res.Skips)
	}

	box := res.Entries[0]
	if box.Kind != KindPoint || box.Rect != (geometry.Rect{X: 128, Y: 60, W: 100, H: 50}) || !box.SizeKnown {
		t.Errorf("one-cell entry = %+v", box)
	}
	if box.Extent == nil || box.Extent.W != 100 || box.Extent.H != 50 {
		t.Errorf("extent = %+v", box.Extent)
	}

	logo := res.Entries[1]
	if logo.SizeKnown || logo.Rect != (geometry.Rect{X: 64, Y: 20}) {
		t.Errorf("extent-less entry = %+v", logo)
	}

	tb := res.Entries[2]
	if !tb.Absolute || tb.Object != ObjectTextBox || tb.Rect != (geometry.Rect{X: 10, Y: 20, W: 20, H: 10}) {
		t.Errorf("absolute entry = %+v", tb)
	}
	if tb.Text.PlainText() != "Note" {
		t.Errorf("text = %q", tb.Text.PlainText())
	}
}

func TestExtentlessPointShapes(t *testing.T) {
	sized := `<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="3" name="Sized"/><xdr:cNvSpPr txBox="1"/></xdr:nvSpPr>` +
		`<xdr:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="952500" cy="190500"/></a:xfrm><a:prstGeom prst="rect"/>` +
		`<a:solidFill><a:srgbClr val="FFFF00"/></a:solidFill></xdr:spPr>` +
		`<xdr:txBody><a:bodyPr/><a:p><a:r><a:t>Sized</a:t></a:r></a:p></xdr:txBody></xdr:sp>`
	point := func(col, row int, body string) string {
		return `<xdr:oneCellAnchor>` + cellMarker("from", col, row) + body + `<xdr:clientData/></xdr:oneCellAnchor>`
	}

	res := parse(t, drawing(
		point(1, 1, solidShape(2, "Bare", "")),
		point(2, 2, sized),
	))
	if len(res.Skips) != 1 || res.Skips[0].Name != "Bare" || res.Skips[0].Reason != ReasonDegenerate {
		t.Errorf("skips = %+v", res.Skips)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %+v", res.Entries)
	}
	e := res.Entries[0]
	if !e.SizeKnown || e.Object != ObjectTextBox || e.Rect != (geometry.Rect{X: 128, Y: 40, W: 100, H: 20}) {
		t.Errorf("entry = %+v", e)
	}
}

func TestClampedAndUnresolvedPicture(t *testing.T) {
	res := parse(t, drawing(twoCell(8, 8, 50, 50, pic(1, "Wide", "rId9"))))
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %+v skips = %+v", res.Entries, res.Skips)
	}
	e := res.Entries[0]
	if !e.Clamped {
		t.Error("expected entry to be marked clamped")
	}
	if e.Rect != (geometry.Rect{X: 512, Y: 160, W: 128, H: 40}) {
		t.Errorf("Rect = %+v", e.Rect)
	}
	if e.RelationshipID != "rId9" || e.TargetPath != "" {
		t.Errorf("relationship = %q -> %q", e.RelationshipID, e.TargetPath)
	}
}

func TestExternalPicture(t *testing.T) {
	res := parse(t, drawing(twoCell(0, 0, 2, 2, pic(1, "Remote", "rId2"))))
	if len(res.Entries) != 1 || !res.Entries[0].External || res.Entries[0].TargetPath != "https://example.com/logo.png" {
		t.Fatalf("entries = %+v", res.Entries)
	}
}

func TestAlternateContentUsesChoice(t *testing.T) {
	alt := `<mc:AlternateContent><mc:Choice Requires="a14">` + solidShape(2, "Modern", "") +
		`</mc:Choice><mc:Fallback>` + solidShape(3, "Legacy", "") + `</mc:Fallback></mc:AlternateContent>`
	res := parse(t, drawing(twoCell(0, 0, 2, 2, alt)))
	if len(res.Entries) != 1 || res.Entries[0].Name != "Modern" {
		t.Fatalf("entries = %+v", res.Entries)
	}

	fallbackOnly := `<mc:AlternateContent><mc:Choice Requires="a14"></mc:Choice><mc:Fallback>` +
		solidShape(3, "Legacy", "") + `</mc:Fallback></mc:AlternateContent>`
	res = parse(t, drawing(twoCell(0, 0, 2, 2, fallbackOnly)))
	if len(res.Entries) != 1 || res.Entries[0].Name != "Legacy" {
		t.Fatalf("entries = %+v", res.Entries)
	}
}

func TestGroupChildrenAreFlattened(t *testing.T) {
	child := func(id int, name string, off, ext int) string {
		return `<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="` + itoa(id) + `" name="` + name + `"/><xdr:cNvSpPr/></xdr:nvSpPr>` +
			`<xdr:spPr><a:xfrm><a:off x="` + itoa(off) + `" y="` + itoa(off) + `"/><a:ext cx="` + itoa(ext) + `" cy="` + itoa(ext) + `"/></a:xfrm>` +
			`<a:solidFill><a:srgbClr val="FF0000"/></a:solidFill></xdr:spPr></xdr:sp>`
	}
	group := `<xdr:grpSp><xdr:nvGrpSpPr><xdr:cNvPr id="1" name="Group 1"/><xdr:cNvGrpSpPr/></xdr:nvGrpSpPr>` +
		`<xdr:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="1000" cy="1000"/><a:chOff x="0" y="0"/><a:chExt cx="1000" cy="1000"/></a:xfrm></xdr:grpSpPr>` +
		child(2, "A", 0, 500) + child(3, "B", 500, 500) + `</xdr:grpSp>`
	res := parse(t, drawing(twoCell(0, 0, 2, 5, group)))
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %+v skips = %+v", res.Entries, res.Skips)
	}
	a, b := res.Entries[0], res.Entries[1]
	if a.Name != "A" || a.Group != "Group 1" || a.Sub != 0 || a.Rect != (geometry.Rect{X: 0, Y: 0, W: 64, H: 50}) {
		t.Errorf("first child = %+v", a)
	}
	if b.Name != "B" || b.Sub != 1 || b.Rect != (geometry.Rect{X: 64, Y: 50, W: 64, H: 50}) {
		t.Errorf("second child = %+v", b)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte(header + `<xdr:twoCellAnchor>`)); !errors.Is(err, errors.ErrCodeInvalidDrawing) {
		t.Errorf("truncated drawing: got %v", err)
	}
	d, err := Decode(drawing())
	if err != nil || d.Len() != 0 {
		t.Errorf("empty drawing: %v, %d anchors", err, d.Len())
	}
	res := Parse("Sheet1", nil, nil, uniformOffsets(1, 1), DefaultOptions(), nil)
	if res.Entries == nil || len(res.Entries) != 0 {
		t.Errorf("nil drawing result = %+v", res)
	}
}

func TestDrawingExtent(t *testing.T) {
	d, err := Decode(drawing(twoCell(1, 2, 7, 30, pic(1, "p", "rId1"))))
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := d.Extent()
	if rows != 31 || cols != 8 {
		t.Errorf("Extent = %d rows, %d cols; want 31, 8", rows, cols)
	}
}
