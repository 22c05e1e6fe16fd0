// Package xlsx opens .xlsx workbooks for layout reconstruction: cell
// contents and formatting through excelize, and the drawing, media and theme
// parts that excelize does not expose through the raw package.
package xlsx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/opc"
	"github.com/klytics/sheetcanvas/internal/style"
)

const workbookPart = "xl/workbook.xml"

// File is an opened workbook.
type File struct {
	Path string

	x     *excelize.File
	pkg   *opc.Package
	theme *style.Theme

	sheets []sheetRef
	styles map[int]*cellStyle
}

type sheetRef struct {
	Name string
	Part string
}

// Open reads the workbook at path.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	f, err := OpenBytes(data)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// OpenBytes reads a workbook from memory.
func OpenBytes(data []byte) (*File, error) {
	pkg, err := opc.Open(data)
	if err != nil {
		return nil, err
	}
	x, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "could not open workbook — is this a valid .xlsx file?")
	}
	f := &File{x: x, pkg: pkg, styles: make(map[int]*cellStyle)}
	if err := f.readWorkbook(); err != nil {
		x.Close()
		return nil, err
	}
	return f, nil
}

// Close releases the workbook.
func (f *File) Close() error {
	return f.x.Close()
}

// SheetNames returns the sheet names in workbook order.
func (f *File) SheetNames() []string {
	names := make([]string, len(f.sheets))
	for i, s := range f.sheets {
		names[i] = s.Name
	}
	return names
}

// Theme returns the workbook theme, or the built-in Office theme when the
// package has none.
func (f *File) Theme() *style.Theme {
	return f.theme
}

// Media returns the content of a package part such as an image.
func (f *File) Media(part string) ([]byte, error) {
	return f.pkg.Part(part)
}

func (f *File) sheet(name string) (sheetRef, error) {
	for _, s := range f.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return sheetRef{}, errors.New(errors.ErrCodeSheetNotFound, "sheet %q not found — available sheets: %v", name, f.SheetNames())
}

type xmlWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

// readWorkbook maps sheet names to worksheet parts and loads the theme.
func (f *File) readWorkbook() error {
	data, err := f.pkg.Part(workbookPart)
	if err != nil {
		return err
	}
	var wb xmlWorkbook
	if err := xml.Unmarshal(data, &wb); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPackage, err, "could not decode %s", workbookPart)
	}
	rels, err := f.pkg.Relationships(workbookPart)
	if err != nil {
		return err
	}
	for _, s := range wb.Sheets {
		ref := sheetRef{Name: s.Name}
		if t, ok := rels.Lookup(s.RID); ok && !t.External {
			ref.Part = t.Path
		}
		f.sheets = append(f.sheets, ref)
	}

	f.theme = style.DefaultTheme()
	if t, ok := rels.FirstOfType(opc.RelTypeTheme); ok && f.pkg.Has(t.Path) {
		data, err := f.pkg.Part(t.Path)
		if err != nil {
			return err
		}
		if th, err := style.ParseTheme(data); err == nil {
			f.theme = th
		}
	}
	return nil
}

// DrawingPart is a sheet's drawing part with its relationships.
type DrawingPart struct {
	Path string
	Data []byte
	Rels opc.Relationships
}

// Drawing returns the drawing part of a sheet, or nil when the sheet has no
// drawing.
func (f *File) Drawing(sheet string) (*DrawingPart, error) {
	ref, err := f.sheet(sheet)
	if err != nil {
		return nil, err
	}
	if ref.Part == "" {
		return nil, nil
	}
	data, err := f.pkg.Part(ref.Part)
	if err != nil {
		return nil, err
	}
	rid, err := drawingRelID(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "could not decode %s", ref.Part)
	}
	if rid == "" {
		return nil, nil
	}
	rels, err := f.pkg.Relationships(ref.Part)
	if err != nil {
		return nil, err
	}
	t, ok := rels.Lookup(rid)
	if !ok || t.External {
		return nil, errors.New(errors.ErrCodeUnresolvedRelationship, "drawing relationship %s of %s does not resolve", rid, ref.Part)
	}
	d := &DrawingPart{Path: t.Path}
	if d.Data, err = f.pkg.Part(t.Path); err != nil {
		return nil, err
	}
	if d.Rels, err = f.pkg.Relationships(t.Path); err != nil {
		return nil, err
	}
	return d, nil
}

// drawingRelID scans a worksheet part for its <drawing r:id="..."/>
// element without decoding the cell data.
func drawingRelID(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			if t.Name.Local == "drawing" {
				for _, a := range t.Attr {
					if a.Name.Local == "id" {
						return a.Value, nil
					}
				}
			}
			if err := dec.Skip(); err != nil {
				return "", err
			}
			depth--
		case xml.EndElement:
			depth--
		}
	}
}
