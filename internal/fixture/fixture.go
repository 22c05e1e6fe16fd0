// Package fixture builds sample workbooks with excelize for tests,
// benchmarks and the testdata generator.
package fixture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the sample workbook.
const (
	ReportSheet = "Report"
	NotesSheet  = "Notes"
)

// PNG returns a w x h solid PNG.
func PNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	// Encoding an in-memory RGBA image into a buffer cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Workbook returns the sample workbook:
//
//	Report: header row A1:B1 (blue fill, bold white 12pt, thin bottom
//	        border), A2:B2 values, "Total" merged over C3:E4 (centered),
//	        column A 20 wide, row 2 30pt high, row 5 hidden, a note in A6,
//	        and a 100x50 picture anchored at G8.
//	Notes:  one value in A1 and a "Draft" rectangle at B2.
func Workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ReportSheet); err != nil {
		return nil, err
	}
	s := ReportSheet
	values := map[string]any{
		"A1": "Quarter",
		"B1": "Revenue",
		"A2": "Q1",
		"B2": 1250,
		"C3": "Total",
		"A6": "Figures are unaudited",
	}
	for cell, v := range values {
		if err := f.SetCellValue(s, cell, v); err != nil {
			return nil, fmt.Errorf("could not set %s: %w", cell, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Font:   &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(s, "A1", "B1", header); err != nil {
		return nil, err
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(s, "C3", "C3", centered); err != nil {
		return nil, err
	}
	if err := f.MergeCell(s, "C3", "E4"); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(s, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetRowHeight(s, 2, 30); err != nil {
		return nil, err
	}
	if err := f.SetRowVisible(s, 5, false); err != nil {
		return nil, err
	}
	if err := f.AddPictureFromBytes(s, "G8", &excelize.Picture{
		Extension:  ".png",
		File:       PNG(100, 50, color.RGBA{R: 0xED, G: 0x7D, B: 0x31, A: 0xFF}),
		Format:     &excelize.GraphicOptions{AltText: "Logo"},
		InsertType: excelize.PictureInsertTypePlaceOverCells,
	}); err != nil {
		return nil, fmt.Errorf("could not add picture: %w", err)
	}

	if _, err := f.NewSheet(NotesSheet); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(NotesSheet, "A1", "See report"); err != nil {
		return nil, err
	}
	if err := f.AddShape(NotesSheet, &excelize.Shape{
		Cell:   "B2",
		Type:   "rect",
		Width:  120,
		Height: 40,
		Paragraph: []excelize.RichTextRun{
			{Text: "Draft", Font: &excelize.Font{Bold: true, Size: 14, Color: "C00000"}},
		},
	}); err != nil {
		return nil, fmt.Errorf("could not add shape: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
