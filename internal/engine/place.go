package engine

import (
	"github.com/klytics/sheetcanvas/internal/anchor"
	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// place computes final rects: contain-fit for pictures and fitted text for
// cell text and text boxes. Elements are processed one at a time in z
// order, so the output order is the Ordering stage's order. An element
// that cannot be placed is logged and dropped; an element whose resource
// is unavailable moves to Result.Absent.
func (r *run) place() error {
	out := make([]Element, 0, len(r.elements))
	for _, el := range r.elements {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		switch p := el.Payload.(type) {
		case Picture:
			placed, ok := r.placePicture(el, p)
			if !ok {
				continue
			}
			out = append(out, placed)
		case TextBox:
			if p.Text != "" {
				pt, pl := r.fitText(p.Text, el.Rect, p.Font.SizePt, p.HAlign, p.VAlign)
				p.Font = textFont(pt, p.Font.Color, p.Font.Family, p.Font.Bold, p.Font.Italic, p.Font.Underline)
				p.Placement = &pl
			}
			out = append(out, el.With(el.Rect, p))
		case CellText:
			pt, pl := r.fitText(p.Text, el.Rect, p.Font.SizePt, p.HAlign, p.VAlign)
			p.Font = textFont(pt, p.Font.Color, p.Font.Family, p.Font.Bold, p.Font.Italic, p.Font.Underline)
			p.Placement = &pl
			out = append(out, el.With(el.Rect, p))
		case Background, Border:
			out = append(out, el)
		}
	}
	r.res.Elements = out
	r.logger.Debug("Placed elements", "sheet", r.name, "elements", len(out), "absent", len(r.res.Absent))
	return nil
}

// fitText shrinks text until it fits rect and lays it out.
func (r *run) fitText(text string, rect geometry.Rect, basePt int, h, v string) (int, textfit.Placement) {
	pad := r.e.opts.Text.PaddingPx
	inner := rect.Inset(pad)
	pt := r.e.fitter.FitFontSize(text, inner.W, inner.H, basePt, min(r.e.opts.Text.MinPt, basePt))
	pl := r.e.fitter.Place(text, rect, geometry.PxFromPoints(float64(pt)), h, v, pad)
	return pt, pl
}

func (r *run) placePicture(el Element, p Picture) (Element, bool) {
	e := r.entries[el.Source]
	switch {
	case e == nil:
		r.dropPlacement(el, errors.New(errors.ErrCodeInternal, "no anchor for %s", el.Source))
		return Element{}, false
	case e.External:
		r.absent(el, AbsentExternal, e.TargetPath)
		return Element{}, false
	case e.TargetPath == "":
		r.absent(el, AbsentUnresolved, e.RelationshipID)
		return Element{}, false
	}

	data, err := r.wb.Media(e.TargetPath)
	if err != nil {
		r.absent(el, AbsentMissing, errors.UserMessage(err))
		return Element{}, false
	}
	w, h, format, err := naturalSize(data)
	if err != nil {
		r.absent(el, AbsentUndecoded, errors.UserMessage(err))
		return Element{}, false
	}
	p.NaturalW, p.NaturalH, p.Format = w, h, format

	// Without a declared size the picture sits at its anchor at natural size.
	if !e.SizeKnown {
		rect := geometry.Rect{X: el.Rect.X, Y: el.Rect.Y, W: float64(w), H: float64(h)}
		p.Frame = rect
		return el.With(rect, p), true
	}

	fitted, err := ContainFit(el.Rect, float64(w), float64(h), r.e.opts.Fit)
	if err != nil {
		r.dropPlacement(el, err)
		return Element{}, false
	}
	return el.With(fitted, p), true
}

func (r *run) absent(el Element, reason, detail string) {
	r.logger.Warn("Picture unavailable", "sheet", r.name, "source", el.Source, "reason", reason)
	r.res.Absent = append(r.res.Absent, Absent{Element: el, Reason: reason, Detail: detail})
}

func (r *run) dropPlacement(el Element, err error) {
	e := r.entries[el.Source]
	s := anchor.Skip{Sheet: r.name, Reason: ReasonPlacement, Detail: errors.UserMessage(err)}
	if e != nil {
		s.Index, s.ID, s.Name = e.Index, e.ID, e.Name
	}
	r.logger.Warn("Skipping drawing element", "sheet", r.name, "index", s.Index, "name", s.Name, "reason", s.Reason)
	r.res.Skips = append(r.res.Skips, s)
}
