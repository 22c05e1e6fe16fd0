package anchor

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/klytics/sheetcanvas/internal/drawingml"
	"github.com/klytics/sheetcanvas/internal/errors"
)

// Anchor element names.
const (
	elemTwoCell  = "twoCellAnchor"
	elemOneCell  = "oneCellAnchor"
	elemAbsolute = "absoluteAnchor"
)

type xmlMarker struct {
	Col    int   `xml:"col"`
	ColOff int64 `xml:"colOff"`
	Row    int   `xml:"row"`
	RowOff int64 `xml:"rowOff"`
}

type xmlAnchor struct {
	XMLName xml.Name
	EditAs  string           `xml:"editAs,attr"`
	From    *xmlMarker       `xml:"from"`
	To      *xmlMarker       `xml:"to"`
	Pos     *drawingml.Point `xml:"pos"`
	Ext     *drawingml.Size  `xml:"ext"`
	Objects []xmlObject      `xml:",any"`
}

type xmlNonVisual struct {
	Props   drawingml.NonVisualProps `xml:"cNvPr"`
	ShapeNv *struct {
		TxBox bool `xml:"txBox,attr"`
	} `xml:"cNvSpPr"`
}

// xmlObject decodes every object that can sit inside an anchor or group:
// sp, pic, cxnSp, grpSp, graphicFrame and mc:AlternateContent.
type xmlObject struct {
	XMLName xml.Name

	NvSp    *xmlNonVisual `xml:"nvSpPr"`
	NvPic   *xmlNonVisual `xml:"nvPicPr"`
	NvCxn   *xmlNonVisual `xml:"nvCxnSpPr"`
	NvGrp   *xmlNonVisual `xml:"nvGrpSpPr"`
	NvFrame *xmlNonVisual `xml:"nvGraphicFramePr"`

	SpPr     *drawingml.ShapeProperties `xml:"spPr"`
	GrpSpPr  *drawingml.ShapeProperties `xml:"grpSpPr"`
	Style    *drawingml.ShapeStyle      `xml:"style"`
	TxBody   *drawingml.TextBody        `xml:"txBody"`
	BlipFill *drawingml.BlipFill        `xml:"blipFill"`

	Choice   []xmlBranch `xml:"Choice"`
	Fallback *xmlBranch  `xml:"Fallback"`

	// Group children in document order. Elements matched by the fields
	// above never land here.
	Children []xmlObject `xml:",any"`
}

type xmlBranch struct {
	Requires string      `xml:"Requires,attr"`
	Objects  []xmlObject `xml:",any"`
}

func (o *xmlObject) nonVisual() *xmlNonVisual {
	for _, nv := range []*xmlNonVisual{o.NvSp, o.NvPic, o.NvCxn, o.NvGrp, o.NvFrame} {
		if nv != nil {
			return nv
		}
	}
	return &xmlNonVisual{}
}

// expand replaces mc:AlternateContent wrappers with the objects of their
// first non-empty Choice, or of Fallback.
func expand(objs []xmlObject) []xmlObject {
	var out []xmlObject
	for _, o := range objs {
		if o.XMLName.Local != "AlternateContent" {
			out = append(out, o)
			continue
		}
		var chosen []xmlObject
		for _, c := range o.Choice {
			if len(c.Objects) > 0 {
				chosen = c.Objects
				break
			}
		}
		if chosen == nil && o.Fallback != nil {
			chosen = o.Fallback.Objects
		}
		out = append(out, expand(chosen)...)
	}
	return out
}

// Drawing is a decoded drawing part.
type Drawing struct {
	anchors []xmlAnchor
}

// Decode parses a drawing part. Elements other than the three anchor kinds
// are ignored.
func Decode(data []byte) (*Drawing, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	d := &Drawing{}
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDrawing, err, "could not decode drawing")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			switch t.Name.Local {
			case elemTwoCell, elemOneCell, elemAbsolute:
				var a xmlAnchor
				if err := dec.DecodeElement(&a, &t); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidDrawing, err, "could not decode %s", t.Name.Local)
				}
				d.anchors = append(d.anchors, a)
			default:
				if err := dec.Skip(); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidDrawing, err, "could not decode drawing")
				}
			}
			depth--
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		return nil, errors.New(errors.ErrCodeInvalidDrawing, "drawing is truncated")
	}
	return d, nil
}

// Len returns the number of anchors.
func (d *Drawing) Len() int {
	if d == nil {
		return 0
	}
	return len(d.anchors)
}

// Extent returns the number of rows and columns the anchors' grid markers
// reach, so offset tables can be sized to cover them.
func (d *Drawing) Extent() (rows, cols int) {
	if d == nil {
		return 0, 0
	}
	for _, a := range d.anchors {
		for _, m := range []*xmlMarker{a.From, a.To} {
			if m == nil {
				continue
			}
			rows = max(rows, m.Row+1)
			cols = max(cols, m.Col+1)
		}
	}
	return rows, cols
}
