// Package anchor extracts anchored objects from a sheet's drawing part and
// resolves each anchor to a pixel rectangle on the sheet grid.
package anchor

import (
	"github.com/charmbracelet/log"

	"github.com/klytics/sheetcanvas/internal/drawingml"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/opc"
	"github.com/klytics/sheetcanvas/internal/style"
)

// Kind is how an anchor positions its object.
type Kind string

const (
	// KindRange spans a from/to cell pair.
	KindRange Kind = "range"
	// KindPoint is a single cell position with an optional extent.
	KindPoint Kind = "point"
)

// Object is the kind of anchored object.
type Object string

const (
	ObjectPicture   Object = "picture"
	ObjectShape     Object = "shape"
	ObjectTextBox   Object = "textbox"
	ObjectConnector Object = "connector"
)

// Skip reasons.
const (
	ReasonHidden      = "hidden"
	ReasonDegenerate  = "degenerate"
	ReasonTransparent = "transparent"
	ReasonOutOfBounds = "out_of_bounds"
	ReasonInvalid     = "invalid_geometry"
	ReasonUnsupported = "unsupported"
)

// Marker is a grid position: a zero-based cell plus an offset in EMUs.
type Marker struct {
	Col    int   `json:"col" yaml:"col"`
	Row    int   `json:"row" yaml:"row"`
	ColOff int64 `json:"colOff" yaml:"colOff"`
	RowOff int64 `json:"rowOff" yaml:"rowOff"`
}

// Extent is an explicit size in pixels.
type Extent struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Entry is one anchored object with its resolved rectangle.
type Entry struct {
	Sheet  string `json:"sheet" yaml:"sheet"`
	Index  int    `json:"index" yaml:"index"`
	Sub    int    `json:"sub" yaml:"sub"`
	Kind   Kind   `json:"anchorKind" yaml:"anchorKind"`
	EditAs string `json:"editAs,omitempty" yaml:"editAs,omitempty"`
	// Absolute is set for anchors positioned in absolute units rather
	// than on the grid.
	Absolute bool   `json:"absolute,omitempty" yaml:"absolute,omitempty"`
	Object   Object `json:"object" yaml:"object"`
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Descr    string `json:"descr,omitempty" yaml:"descr,omitempty"`
	Group    string `json:"group,omitempty" yaml:"group,omitempty"`

	From   *Marker `json:"fromCell,omitempty" yaml:"fromCell,omitempty"`
	To     *Marker `json:"toCell,omitempty" yaml:"toCell,omitempty"`
	Extent *Extent `json:"explicitExtent,omitempty" yaml:"explicitExtent,omitempty"`

	RelationshipID string `json:"relationshipId,omitempty" yaml:"relationshipId,omitempty"`
	TargetPath     string `json:"resolvedTargetPath,omitempty" yaml:"resolvedTargetPath,omitempty"`
	External       bool   `json:"external,omitempty" yaml:"external,omitempty"`

	Rect geometry.Rect `json:"rectPx" yaml:"rectPx"`
	// SizeKnown is false for point anchors without an extent; Rect then
	// only carries a position.
	SizeKnown bool `json:"sizeKnown" yaml:"sizeKnown"`
	Clamped   bool `json:"clamped,omitempty" yaml:"clamped,omitempty"`

	Props *drawingml.ShapeProperties `json:"-" yaml:"-"`
	Style *drawingml.ShapeStyle      `json:"-" yaml:"-"`
	Text  *drawingml.TextBody        `json:"-" yaml:"-"`
}

// Skip records an object dropped by the filter policy.
type Skip struct {
	Sheet  string `json:"sheet" yaml:"sheet"`
	Index  int    `json:"index" yaml:"index"`
	ID     int    `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Result holds the kept entries and the skip log, both in document order.
type Result struct {
	Entries []Entry `json:"entries" yaml:"entries"`
	Skips   []Skip  `json:"skips" yaml:"skips"`
}

// Options tune the filter policy.
type Options struct {
	// MinPixels is the smallest width or height kept.
	MinPixels float64
	// MaxExtentPx bounds plausible positions and sizes.
	MaxExtentPx float64
	// Theme resolves shape colors for the transparency check.
	Theme *style.Theme
}

// DefaultOptions returns the default filter policy.
func DefaultOptions() Options {
	return Options{MinPixels: 2, MaxExtentPx: 1_000_000, Theme: style.DefaultTheme()}
}

// ParseAnchors decodes a drawing part and resolves its anchors. A part that
// cannot be decoded yields an error and no entries.
func ParseAnchors(sheet string, data []byte, rels opc.Relationships, off geometry.Offsets, opts Options, logger *log.Logger) (Result, error) {
	d, err := Decode(data)
	if err != nil {
		return Result{}, err
	}
	return Parse(sheet, d, rels, off, opts, logger), nil
}

// Parse resolves every anchor of d against the offset tables. It never
// fails: objects that cannot be placed are recorded as skips and logged.
func Parse(sheet string, d *Drawing, rels opc.Relationships, off geometry.Offsets, opts Options, logger *log.Logger) Result {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Theme == nil {
		opts.Theme = style.DefaultTheme()
	}
	p := &parser{sheet: sheet, rels: rels, off: off, opts: opts, logger: logger}
	if d != nil {
		for i, a := range d.anchors {
			p.anchor(i, a)
		}
	}
	if p.res.Entries == nil {
		p.res.Entries = []Entry{}
	}
	if p.res.Skips == nil {
		p.res.Skips = []Skip{}
	}
	return p.res
}

type parser struct {
	sheet  string
	rels   opc.Relationships
	off    geometry.Offsets
	opts   Options
	logger *log.Logger
	res    Result
}

// placement is an anchor's resolved position shared by its objects.
type placement struct {
	index     int
	kind      Kind
	absolute  bool
	editAs    string
	from, to  *Marker
	extent    *Extent
	rect      geometry.Rect
	sizeKnown bool
	clamped   bool
}

func (p *parser) skip(index int, nv drawingml.NonVisualProps, reason, detail string) {
	s := Skip{Sheet: p.sheet, Index: index, ID: nv.ID, Name: nv.Name, Reason: reason, Detail: detail}
	p.res.Skips = append(p.res.Skips, s)
	p.logger.Warn("Skipping drawing element", "sheet", p.sheet, "index", index, "name", nv.Name, "reason", reason)
}

func (p *parser) anchor(index int, a xmlAnchor) {
	objs := expand(a.Objects)
	var first drawingml.NonVisualProps
	for _, o := range objs {
		if o.XMLName.Local != "clientData" {
			first = o.nonVisual().Props
			break
		}
	}

	pl, reason := p.place(index, a)
	if reason != "" {
		p.skip(index, first, reason, a.XMLName.Local)
		return
	}
	sub := 0
	for _, o := range objs {
		if o.XMLName.Local == "clientData" {
			continue
		}
		p.object(pl, o, pl.rect, pl.sizeKnown, "", &sub)
	}
}

// place resolves the anchor's rectangle, or returns a skip reason.
func (p *parser) place(index int, a xmlAnchor) (placement, string) {
	pl := placement{index: index, editAs: a.EditAs}
	if a.Ext != nil {
		if a.Ext.Cx < 0 || a.Ext.Cy < 0 {
			return pl, ReasonInvalid
		}
		pl.extent = &Extent{W: geometry.PxFromEMU(a.Ext.Cx), H: geometry.PxFromEMU(a.Ext.Cy)}
	}

	switch a.XMLName.Local {
	case elemTwoCell:
		if a.From == nil || a.To == nil {
			return pl, ReasonInvalid
		}
		pl.kind = KindRange
		pl.from, pl.to = marker(a.From), marker(a.To)
		x1, y1 := p.point(pl.from, &pl.clamped)
		x2, y2 := p.point(pl.to, &pl.clamped)
		pl.rect = geometry.Between(x1, y1, x2, y2)
		pl.sizeKnown = true
	case elemOneCell:
		if a.From == nil {
			return pl, ReasonInvalid
		}
		pl.kind = KindPoint
		pl.from = marker(a.From)
		x, y := p.point(pl.from, &pl.clamped)
		pl.rect = geometry.Rect{X: x, Y: y}
	case elemAbsolute:
		if a.Pos == nil {
			return pl, ReasonInvalid
		}
		pl.kind = KindPoint
		pl.absolute = true
		pl.rect = geometry.Rect{X: geometry.PxFromEMU(a.Pos.X), Y: geometry.PxFromEMU(a.Pos.Y)}
	default:
		return pl, ReasonUnsupported
	}
	if pl.kind == KindPoint && pl.extent != nil {
		pl.rect.W, pl.rect.H = pl.extent.W, pl.extent.H
		pl.sizeKnown = true
	}
	if pl.clamped {
		p.logger.Debug("Clamped anchor to grid", "sheet", p.sheet, "index", index)
	}
	if !pl.rect.Finite() {
		return pl, ReasonInvalid
	}
	return pl, ""
}

func marker(m *xmlMarker) *Marker {
	return &Marker{Col: m.Col, Row: m.Row, ColOff: m.ColOff, RowOff: m.RowOff}
}

// point converts a grid marker to pixels, clamping indices to the table.
func (p *parser) point(m *Marker, clamped *bool) (float64, float64) {
	col, cc := p.off.ClampCol(m.Col)
	row, rc := p.off.ClampRow(m.Row)
	if cc || rc {
		*clamped = true
	}
	return p.off.ColX(col) + geometry.PxFromEMU(m.ColOff), p.off.RowY(row) + geometry.PxFromEMU(m.RowOff)
}

func (p *parser) object(pl placement, o xmlObject, rect geometry.Rect, sizeKnown bool, group string, sub *int) {
	nv := o.nonVisual()
	kind := o.XMLName.Local
	switch kind {
	case "grpSp":
		if nv.Props.Hidden {
			p.skip(pl.index, nv.Props, ReasonHidden, kind)
			return
		}
		for _, child := range expand(o.Children) {
			switch child.XMLName.Local {
			case "sp", "pic", "cxnSp", "grpSp", "graphicFrame":
			default:
				continue
			}
			childRect := rect
			if sizeKnown {
				childRect = childBounds(rect, o.GrpSpPr, child.props())
			}
			p.object(pl, child, childRect, sizeKnown, nv.Props.Name, sub)
		}
		return
	case "graphicFrame":
		p.skip(pl.index, nv.Props, ReasonUnsupported, kind)
		return
	case "sp", "pic", "cxnSp":
	default:
		return
	}

	if nv.Props.Hidden {
		p.skip(pl.index, nv.Props, ReasonHidden, kind)
		return
	}
	// Only pictures can take their size from the resource. Other objects
	// without an anchor extent fall back to their own xfrm.
	if !sizeKnown && kind != "pic" {
		ext := ownExtent(o.props())
		if ext == nil || group != "" {
			p.skip(pl.index, nv.Props, ReasonDegenerate, kind)
			return
		}
		rect.W, rect.H = ext.W, ext.H
		sizeKnown = true
	}
	if r := p.opts.MaxExtentPx; r > 0 && (rect.X > r || rect.Y > r || rect.X < -r || rect.Y < -r || rect.W > r || rect.H > r) {
		p.skip(pl.index, nv.Props, ReasonOutOfBounds, kind)
		return
	}
	if sizeKnown && (rect.W < p.opts.MinPixels || rect.H < p.opts.MinPixels) && kind != "cxnSp" {
		p.skip(pl.index, nv.Props, ReasonDegenerate, kind)
		return
	}

	e := Entry{
		Sheet:     p.sheet,
		Index:     pl.index,
		Sub:       *sub,
		Kind:      pl.kind,
		EditAs:    pl.editAs,
		Absolute:  pl.absolute,
		ID:        nv.Props.ID,
		Name:      nv.Props.Name,
		Descr:     nv.Props.Descr,
		Group:     group,
		From:      pl.from,
		To:        pl.to,
		Extent:    pl.extent,
		Rect:      rect,
		SizeKnown: sizeKnown,
		Clamped:   pl.clamped,
		Props:     o.props(),
		Style:     o.Style,
		Text:      o.TxBody,
	}

	switch {
	case kind == "pic":
		e.Object = ObjectPicture
		p.resolveBlip(&e, o.BlipFill)
	case kind == "cxnSp":
		e.Object = ObjectConnector
		if p.transparent(e) {
			p.skip(pl.index, nv.Props, ReasonTransparent, kind)
			return
		}
	default:
		e.Object = ObjectShape
		if (nv.ShapeNv != nil && nv.ShapeNv.TxBox) || o.TxBody.HasText() {
			e.Object = ObjectTextBox
		}
		if p.transparent(e) {
			p.skip(pl.index, nv.Props, ReasonTransparent, kind)
			return
		}
	}
	*sub++
	p.res.Entries = append(p.res.Entries, e)
}

// ownExtent returns the size declared in the object's xfrm, if any.
func ownExtent(sp *drawingml.ShapeProperties) *Extent {
	if sp == nil || sp.Xfrm == nil || sp.Xfrm.Ext == nil || sp.Xfrm.Ext.Cx <= 0 || sp.Xfrm.Ext.Cy <= 0 {
		return nil
	}
	return &Extent{W: geometry.PxFromEMU(sp.Xfrm.Ext.Cx), H: geometry.PxFromEMU(sp.Xfrm.Ext.Cy)}
}

func (o *xmlObject) props() *drawingml.ShapeProperties {
	if o.SpPr != nil {
		return o.SpPr
	}
	return o.GrpSpPr
}

// transparent reports whether a shape paints nothing at all.
func (p *parser) transparent(e Entry) bool {
	if e.Text.HasText() {
		return false
	}
	th := p.opts.Theme
	if style.ResolveShapeFill(e.Props, e.Style, th).Visible() {
		return false
	}
	return !style.ResolveStroke(e.Props, e.Style, th).Visible()
}

func (p *parser) resolveBlip(e *Entry, bf *drawingml.BlipFill) {
	if bf == nil || bf.Blip == nil {
		return
	}
	id := bf.Blip.Embed
	if id == "" {
		id = bf.Blip.Link
	}
	e.RelationshipID = id
	t, ok := p.rels.Lookup(id)
	if !ok {
		p.logger.Debug("Unresolved picture relationship", "sheet", p.sheet, "index", e.Index, "rel", id)
		return
	}
	e.TargetPath = t.Path
	e.External = t.External
}

// childBounds maps a group child's transform from the group's child
// coordinate space into the group's rectangle. Children without a full
// transform take the whole group rectangle.
func childBounds(group geometry.Rect, grp, child *drawingml.ShapeProperties) geometry.Rect {
	if grp == nil || grp.Xfrm == nil || grp.Xfrm.ChOff == nil || grp.Xfrm.ChExt == nil {
		return group
	}
	if child == nil || child.Xfrm == nil || child.Xfrm.Off == nil || child.Xfrm.Ext == nil {
		return group
	}
	chOff, chExt := grp.Xfrm.ChOff, grp.Xfrm.ChExt
	if chExt.Cx <= 0 || chExt.Cy <= 0 {
		return group
	}
	cx, cy := float64(chExt.Cx), float64(chExt.Cy)
	off, ext := child.Xfrm.Off, child.Xfrm.Ext
	r := geometry.Rect{
		X: group.X + float64(off.X-chOff.X)*group.W/cx,
		Y: group.Y + float64(off.Y-chOff.Y)*group.H/cy,
		W: float64(ext.Cx) * group.W / cx,
		H: float64(ext.Cy) * group.H / cy,
	}
	if !r.Finite() {
		return group
	}
	return r
}
