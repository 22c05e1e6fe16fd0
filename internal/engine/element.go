package engine

import (
	"github.com/google/uuid"

	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/geometry"
	"github.com/klytics/sheetcanvas/internal/style"
	"github.com/klytics/sheetcanvas/internal/textfit"
)

// Kind identifies the payload carried by an Element.
type Kind string

const (
	KindBackground Kind = "background"
	KindBorder     Kind = "border"
	KindPicture    Kind = "picture"
	KindTextBox    Kind = "textbox"
	KindCellText   Kind = "cellText"
)

// Layers of the z key, painted in increasing order.
const (
	LayerBackground = 0
	LayerBorder     = 1
	LayerDrawing    = 2
	LayerCellText   = 3
)

// ZKey orders elements: by layer, then by the declared order within the
// layer, then by position among siblings of the same declaration.
type ZKey struct {
	Layer int `json:"layer" yaml:"layer"`
	Order int `json:"order" yaml:"order"`
	Seq   int `json:"seq" yaml:"seq"`
}

// Less reports whether k paints before o.
func (k ZKey) Less(o ZKey) bool {
	if k.Layer != o.Layer {
		return k.Layer < o.Layer
	}
	if k.Order != o.Order {
		return k.Order < o.Order
	}
	return k.Seq < o.Seq
}

// Payload is the kind-specific content of an element. The set of
// implementations is closed: Background, Border, Picture, TextBox and
// CellText.
type Payload interface {
	Kind() Kind
	sealed()
}

// Background is a solid cell or merged-region fill.
type Background struct {
	Fill    style.Fill    `json:"fill" yaml:"fill"`
	Palette style.Palette `json:"palette" yaml:"palette"`
}

// Border holds the four edges of a cell or merged region.
type Border struct {
	Top    style.Stroke `json:"top" yaml:"top"`
	Right  style.Stroke `json:"right" yaml:"right"`
	Bottom style.Stroke `json:"bottom" yaml:"bottom"`
	Left   style.Stroke `json:"left" yaml:"left"`
}

// Picture is an embedded image. Frame is the anchor rectangle; the
// element rect is the contain-fit result inside it.
type Picture struct {
	Target   string        `json:"target" yaml:"target"`
	Format   string        `json:"format,omitempty" yaml:"format,omitempty"`
	NaturalW int           `json:"naturalW" yaml:"naturalW"`
	NaturalH int           `json:"naturalH" yaml:"naturalH"`
	Frame    geometry.Rect `json:"frame" yaml:"frame"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Descr    string        `json:"descr,omitempty" yaml:"descr,omitempty"`
	EditAs   string        `json:"editAs,omitempty" yaml:"editAs,omitempty"`
}

// TextBox is a drawing shape, with or without text.
type TextBox struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Fill        style.Fill         `json:"fill" yaml:"fill"`
	FillPalette style.Palette      `json:"fillPalette,omitempty" yaml:"fillPalette,omitempty"`
	Stroke      style.Stroke       `json:"stroke" yaml:"stroke"`
	Text        string             `json:"text,omitempty" yaml:"text,omitempty"`
	Font        TextFont           `json:"font" yaml:"font"`
	HAlign      string             `json:"hAlign" yaml:"hAlign"`
	VAlign      string             `json:"vAlign" yaml:"vAlign"`
	Placement   *textfit.Placement `json:"placement,omitempty" yaml:"placement,omitempty"`
	Group       string             `json:"group,omitempty" yaml:"group,omitempty"`
	Connector   bool               `json:"connector,omitempty" yaml:"connector,omitempty"`
}

// CellText is the text of a cell or merged region.
type CellText struct {
	Text      string             `json:"text" yaml:"text"`
	Runs      []xlsx.Run         `json:"runs,omitempty" yaml:"runs,omitempty"`
	Font      TextFont           `json:"font" yaml:"font"`
	HAlign    string             `json:"hAlign" yaml:"hAlign"`
	VAlign    string             `json:"vAlign" yaml:"vAlign"`
	Wrap      bool               `json:"wrap,omitempty" yaml:"wrap,omitempty"`
	Merged    bool               `json:"merged,omitempty" yaml:"merged,omitempty"`
	Placement *textfit.Placement `json:"placement,omitempty" yaml:"placement,omitempty"`
}

// TextFont is a resolved font for the canvas.
type TextFont struct {
	Family    string          `json:"family,omitempty" yaml:"family,omitempty"`
	SizePt    int             `json:"sizePt" yaml:"sizePt"`
	SizePx    float64         `json:"sizePx" yaml:"sizePx"`
	Tier      string          `json:"tier" yaml:"tier"`
	Bold      bool            `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool            `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool            `json:"underline,omitempty" yaml:"underline,omitempty"`
	Color     style.ColorSpec `json:"color" yaml:"color"`
	Palette   style.Palette   `json:"palette" yaml:"palette"`
}

func (Background) Kind() Kind { return KindBackground }
func (Border) Kind() Kind     { return KindBorder }
func (Picture) Kind() Kind    { return KindPicture }
func (TextBox) Kind() Kind    { return KindTextBox }
func (CellText) Kind() Kind   { return KindCellText }

func (Background) sealed() {}
func (Border) sealed()     {}
func (Picture) sealed()    {}
func (TextBox) sealed()    {}
func (CellText) sealed()   {}

// Element is one positioned drawable. Elements are values: stages that
// adjust an element build a new one with With.
type Element struct {
	ID      string        `json:"id" yaml:"id"`
	Kind    Kind          `json:"kind" yaml:"kind"`
	Sheet   string        `json:"sheet" yaml:"sheet"`
	Source  string        `json:"source" yaml:"source"`
	Rect    geometry.Rect `json:"rectPx" yaml:"rectPx"`
	Z       ZKey          `json:"z" yaml:"z"`
	Payload Payload       `json:"payload" yaml:"payload"`
}

// With returns a copy of e with a new rect and payload.
func (e Element) With(rect geometry.Rect, p Payload) Element {
	e.Rect = rect
	e.Payload = p
	return e
}

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/klytics/sheetcanvas/element"))

// elementID derives a stable ID from the element's origin, so converting
// the same workbook twice yields the same IDs.
func elementID(sheet string, kind Kind, source string) string {
	return uuid.NewSHA1(idNamespace, []byte(sheet+"\x00"+string(kind)+"\x00"+source)).String()
}

func newElement(sheet string, kind Kind, source string, rect geometry.Rect, z ZKey, p Payload) Element {
	return Element{
		ID:      elementID(sheet, kind, source),
		Kind:    kind,
		Sheet:   sheet,
		Source:  source,
		Rect:    rect,
		Z:       z,
		Payload: p,
	}
}
