package style

import (
	"encoding/xml"
	"fmt"
)

// schemeSlots lists the twelve theme color slots in document order.
var schemeSlots = []string{
	"dk1", "lt1", "dk2", "lt2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

// sheetIndexSlots maps SpreadsheetML theme indices to slots. Excel swaps
// the first two pairs relative to the scheme's declaration order.
var sheetIndexSlots = []string{
	"lt1", "dk1", "lt2", "dk2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

var schemeAliases = map[string]string{
	"tx1": "dk1",
	"bg1": "lt1",
	"tx2": "dk2",
	"bg2": "lt2",
}

// defaultScheme is the Office 2013-2022 color scheme.
var defaultScheme = map[string]RGB{
	"dk1":      {0x00, 0x00, 0x00},
	"lt1":      {0xFF, 0xFF, 0xFF},
	"dk2":      {0x44, 0x54, 0x6A},
	"lt2":      {0xE7, 0xE6, 0xE6},
	"accent1":  {0x44, 0x72, 0xC4},
	"accent2":  {0xED, 0x7D, 0x31},
	"accent3":  {0xA5, 0xA5, 0xA5},
	"accent4":  {0xFF, 0xC0, 0x00},
	"accent5":  {0x5B, 0x9B, 0xD5},
	"accent6":  {0x70, 0xAD, 0x47},
	"hlink":    {0x05, 0x63, 0xC1},
	"folHlink": {0x95, 0x4F, 0x72},
}

// Theme is a document color scheme.
type Theme struct {
	Name   string
	Scheme map[string]RGB
}

// DefaultTheme returns the built-in Office theme used when a package has no
// theme part.
func DefaultTheme() *Theme {
	scheme := make(map[string]RGB, len(defaultScheme))
	for k, v := range defaultScheme {
		scheme[k] = v
	}
	return &Theme{Name: "Office", Scheme: scheme}
}

// Lookup resolves a scheme color name (including tx1/bg1/tx2/bg2 aliases).
// Slots missing from the theme fall back to the default table.
func (t *Theme) Lookup(name string) (RGB, bool) {
	if alias, ok := schemeAliases[name]; ok {
		name = alias
	}
	if t != nil {
		if c, ok := t.Scheme[name]; ok {
			return c, true
		}
	}
	c, ok := defaultScheme[name]
	return c, ok
}

// Indexed resolves a SpreadsheetML theme color index.
func (t *Theme) Indexed(i int) (RGB, bool) {
	if i < 0 || i >= len(sheetIndexSlots) {
		return RGB{}, false
	}
	return t.Lookup(sheetIndexSlots[i])
}

type xmlTheme struct {
	Name   string         `xml:"name,attr"`
	Scheme xmlColorScheme `xml:"themeElements>clrScheme"`
}

type xmlColorScheme struct {
	Slots []xmlSchemeSlot `xml:",any"`
}

type xmlSchemeSlot struct {
	XMLName xml.Name
	SRGB    *struct {
		Val string `xml:"val,attr"`
	} `xml:"srgbClr"`
	Sys *struct {
		Val     string `xml:"val,attr"`
		LastClr string `xml:"lastClr,attr"`
	} `xml:"sysClr"`
}

// ParseTheme decodes a theme part. Slots it cannot read are left to the
// default table.
func ParseTheme(data []byte) (*Theme, error) {
	var doc xmlTheme
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode theme: %w", err)
	}
	th := &Theme{Name: doc.Name, Scheme: make(map[string]RGB, len(schemeSlots))}
	for _, slot := range doc.Scheme.Slots {
		var hex string
		switch {
		case slot.SRGB != nil:
			hex = slot.SRGB.Val
		case slot.Sys != nil && slot.Sys.LastClr != "":
			hex = slot.Sys.LastClr
		case slot.Sys != nil:
			if c, ok := systemColors[slot.Sys.Val]; ok {
				th.Scheme[slot.XMLName.Local] = c
			}
			continue
		}
		if c, _, ok := ParseHex(hex); ok {
			th.Scheme[slot.XMLName.Local] = c
		}
	}
	return th, nil
}
