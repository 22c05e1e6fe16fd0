package drawingml

// Empty marks presence-only elements such as a:noFill.
type Empty struct{}

// Point is an offset in EMUs.
type Point struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

// Size is an extent in EMUs.
type Size struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

// Transform2D is a:xfrm. ChOff and ChExt are only present on groups and
// define the coordinate space of the group's children.
type Transform2D struct {
	Rot   int    `xml:"rot,attr"`
	FlipH bool   `xml:"flipH,attr"`
	FlipV bool   `xml:"flipV,attr"`
	Off   *Point `xml:"off"`
	Ext   *Size  `xml:"ext"`
	ChOff *Point `xml:"chOff"`
	ChExt *Size  `xml:"chExt"`
}

// SolidFill is a:solidFill.
type SolidFill struct {
	ColorChoice
}

// GradientStop is one a:gs entry.
type GradientStop struct {
	Pos int `xml:"pos,attr"`
	ColorChoice
}

// GradientFill is a:gradFill.
type GradientFill struct {
	Stops []GradientStop `xml:"gsLst>gs"`
}

// PatternFill is a:pattFill.
type PatternFill struct {
	Preset string      `xml:"prst,attr"`
	Fg     ColorChoice `xml:"fgClr"`
	Bg     ColorChoice `xml:"bgClr"`
}

// Blip references image data through a relationship.
type Blip struct {
	Embed string `xml:"embed,attr"`
	Link  string `xml:"link,attr"`
}

// BlipFill is a:blipFill or xdr:blipFill.
type BlipFill struct {
	Blip *Blip `xml:"blip"`
}

// PresetDash is a:prstDash.
type PresetDash struct {
	Val string `xml:"val,attr"`
}

// LineProperties is a:ln. W is in EMUs.
type LineProperties struct {
	W         *int64        `xml:"w,attr"`
	NoFill    *Empty        `xml:"noFill"`
	SolidFill *SolidFill    `xml:"solidFill"`
	GradFill  *GradientFill `xml:"gradFill"`
	PattFill  *PatternFill  `xml:"pattFill"`
	PrstDash  *PresetDash   `xml:"prstDash"`
}

// PresetGeometry is a:prstGeom.
type PresetGeometry struct {
	Preset string `xml:"prst,attr"`
}

// ShapeProperties is spPr / grpSpPr.
type ShapeProperties struct {
	Xfrm      *Transform2D    `xml:"xfrm"`
	PrstGeom  *PresetGeometry `xml:"prstGeom"`
	NoFill    *Empty          `xml:"noFill"`
	SolidFill *SolidFill      `xml:"solidFill"`
	GradFill  *GradientFill   `xml:"gradFill"`
	BlipFill  *BlipFill       `xml:"blipFill"`
	PattFill  *PatternFill    `xml:"pattFill"`
	GrpFill   *Empty          `xml:"grpFill"`
	Line      *LineProperties `xml:"ln"`
}

// StyleRef is a:lnRef / a:fillRef / a:effectRef.
type StyleRef struct {
	Idx int `xml:"idx,attr"`
	ColorChoice
}

// FontRef is a:fontRef.
type FontRef struct {
	Idx string `xml:"idx,attr"`
	ColorChoice
}

// ShapeStyle is xdr:style, the theme-based fallback formatting of a shape.
type ShapeStyle struct {
	LnRef   *StyleRef `xml:"lnRef"`
	FillRef *StyleRef `xml:"fillRef"`
	FontRef *FontRef  `xml:"fontRef"`
}

// NonVisualProps is cNvPr.
type NonVisualProps struct {
	ID     int    `xml:"id,attr"`
	Name   string `xml:"name,attr"`
	Descr  string `xml:"descr,attr"`
	Hidden bool   `xml:"hidden,attr"`
}
