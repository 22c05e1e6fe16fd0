package engine

import (
	"math"
	"sort"

	"github.com/klytics/sheetcanvas/internal/anchor"
	"github.com/klytics/sheetcanvas/internal/drawingml"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/style"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// resolveStyles turns every draft into an element with a resolved payload.
func (r *run) resolveStyles() error {
	r.elements = make([]Element, 0, len(r.drafts))
	for _, d := range r.drafts {
		var p Payload
		switch d.kind {
		case KindBackground:
			p = Background{Fill: d.cell.Fill, Palette: style.MapToPalette(d.cell.Fill.Color.RGB)}
		case KindBorder:
			b := d.cell.Borders
			p = Border{Top: b.Top, Right: b.Right, Bottom: b.Bottom, Left: b.Left}
		case KindCellText:
			p = r.cellText(d)
		case KindPicture:
			p = pictureFor(d.entry)
		case KindTextBox:
			p = r.textBox(d.entry)
		}
		r.elements = append(r.elements, newElement(r.name, d.kind, d.source, d.rect, d.z, p))
	}
	return nil
}

func (r *run) cellText(d draft) CellText {
	c := d.cell
	return CellText{
		Text:   c.Value,
		Runs:   c.Runs,
		Font:   cellFont(c.Font),
		HAlign: c.HAlign,
		VAlign: c.VAlign,
		Wrap:   c.Wrap,
		Merged: d.merged,
	}
}

func cellFont(f xlsx.Font) TextFont {
	pt := int(math.Round(f.SizePt))
	if pt <= 0 {
		pt = int(xlsx.DefaultFontSize)
	}
	return textFont(pt, f.Color, f.Family, f.Bold, f.Italic, f.Underline)
}

func textFont(pt int, c style.ColorSpec, family string, bold, italic, underline bool) TextFont {
	px := geometry.PxFromPoints(float64(pt))
	return TextFont{
		Family:    family,
		SizePt:    pt,
		SizePx:    px,
		Tier:      style.FontTier(px),
		Bold:      bold,
		Italic:    italic,
		Underline: underline,
		Color:     c,
		Palette:   style.MapToPalette(c.RGB),
	}
}

func pictureFor(e *anchor.Entry) Picture {
	return Picture{
		Target: e.TargetPath,
		Frame:  e.Rect,
		Name:   e.Name,
		Descr:  e.Descr,
		EditAs: e.EditAs,
	}
}

// textBox resolves a drawing shape. Text formatting comes from the first
// run that declares properties, then the paragraph end properties.
func (r *run) textBox(e *anchor.Entry) TextBox {
	fill := style.ResolveShapeFill(e.Props, e.Style, r.theme)
	tb := TextBox{
		Name:   e.Name,
		Fill:   fill,
		Stroke: style.ResolveStroke(e.Props, e.Style, r.theme),
		Text:   e.Text.PlainText(),
		HAlign: textfit.AlignLeft,
		VAlign: textfit.AlignTop,
		Group:  e.Group,

		Connector: e.Object == anchor.ObjectConnector,
	}
	if fill.Visible() {
		tb.FillPalette = style.MapToPalette(fill.Color.RGB)
	}

	rp := firstRunProps(e.Text)
	pt := r.e.opts.Text.BasePt
	var family string
	var bold, italic, underline bool
	if rp != nil {
		if rp.Size != nil && *rp.Size > 0 {
			pt = int(math.Round(float64(*rp.Size) / 100))
		}
		bold = rp.Bold != nil && *rp.Bold
		italic = rp.Italic != nil && *rp.Italic
		underline = rp.Underline != "" && rp.Underline != "none"
		if rp.Latin != nil {
			family = rp.Latin.Typeface
		}
	}
	tb.Font = textFont(pt, style.ResolveTextColor(rp, e.Style, r.theme), family, bold, italic, underline)

	if e.Text != nil {
		if e.Text.BodyPr != nil {
			switch e.Text.BodyPr.Anchor {
			case "ctr":
				tb.VAlign = textfit.AlignMiddle
			case "b":
				tb.VAlign = textfit.AlignBottom
			}
		}
		switch firstAlign(e.Text) {
		case "ctr":
			tb.HAlign = textfit.AlignCenter
		case "r":
			tb.HAlign = textfit.AlignRight
		}
	}
	return tb
}

func firstAlign(tb *drawingml.TextBody) string {
	for _, p := range tb.Paragraphs {
		if p.Props != nil && p.Props.Align != "" {
			return p.Props.Align
		}
	}
	return ""
}

func firstRunProps(tb *drawingml.TextBody) *drawingml.RunProperties {
	if tb == nil {
		return nil
	}
	for _, p := range tb.Paragraphs {
		for _, run := range p.Runs {
			if run.Props != nil && !run.Break {
				return run.Props
			}
		}
	}
	for _, p := range tb.Paragraphs {
		if p.EndProps != nil {
			return p.EndProps
		}
	}
	return nil
}

// order sorts elements by z key. The sort is stable, so elements with equal
// keys keep their extraction order.
func (r *run) order() error {
	sort.SliceStable(r.elements, func(i, j int) bool {
		return r.elements[i].Z.Less(r.elements[j].Z)
	})
	return nil
}
