package drawingml

import (
	"encoding/xml"
	"strings"
)

// TextBody is txBody.
type TextBody struct {
	BodyPr     *BodyProperties `xml:"bodyPr"`
	Paragraphs []Paragraph     `xml:"p"`
}

// BodyProperties is a:bodyPr. Insets are in EMUs.
type BodyProperties struct {
	Anchor string `xml:"anchor,attr"`
	Wrap   string `xml:"wrap,attr"`
	LIns   *int64 `xml:"lIns,attr"`
	TIns   *int64 `xml:"tIns,attr"`
	RIns   *int64 `xml:"rIns,attr"`
	BIns   *int64 `xml:"bIns,attr"`
}

// ParagraphProperties is a:pPr.
type ParagraphProperties struct {
	Align string `xml:"algn,attr"`
}

// LatinFont is a:latin.
type LatinFont struct {
	Typeface string `xml:"typeface,attr"`
}

// RunProperties is a:rPr / a:defRPr / a:endParaRPr. Size is in hundredths of a point.
type RunProperties struct {
	Size      *int       `xml:"sz,attr"`
	Bold      *bool      `xml:"b,attr"`
	Italic    *bool      `xml:"i,attr"`
	Underline string     `xml:"u,attr"`
	SolidFill *SolidFill `xml:"solidFill"`
	Latin     *LatinFont `xml:"latin"`
}

// Run is a:r or a:fld. A line break (a:br) decodes as a run with Break set.
type Run struct {
	Props *RunProperties `xml:"rPr"`
	Text  string         `xml:"t"`
	Break bool           `xml:"-"`
}

// Paragraph is a:p with its runs and breaks in document order.
type Paragraph struct {
	Props    *ParagraphProperties
	EndProps *RunProperties
	Runs     []Run
}

// UnmarshalXML keeps runs, fields and breaks in document order.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				p.Props = &ParagraphProperties{}
				if err := d.DecodeElement(p.Props, &t); err != nil {
					return err
				}
			case "r", "fld":
				var r Run
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "br":
				var r Run
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				r.Text, r.Break = "\n", true
				p.Runs = append(p.Runs, r)
			case "endParaRPr":
				p.EndProps = &RunProperties{}
				if err := d.DecodeElement(p.EndProps, &t); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Text returns the paragraph's text with breaks as newlines.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// PlainText returns the body's text, one line per paragraph.
func (tb *TextBody) PlainText() string {
	if tb == nil {
		return ""
	}
	lines := make([]string, len(tb.Paragraphs))
	for i, p := range tb.Paragraphs {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// HasText reports whether the body contains any non-whitespace text.
func (tb *TextBody) HasText() bool {
	return strings.TrimSpace(tb.PlainText()) != ""
}
