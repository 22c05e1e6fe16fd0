package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteTables writes a values-only workbook with one sheet per table to w.
// Unnamed tables become SheetN. The result carries no styles, merges or
// drawings, so converting it yields cell text only.
func WriteTables(w io.Writer, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		name := table.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("could not create sheet %q: %w", name, err)
		}

		for r, row := range table.Rows {
			for c, v := range row {
				if v == "" {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return fmt.Errorf("invalid cell coordinates: %w", err)
				}
				if err := f.SetCellStr(name, ref, v); err != nil {
					return fmt.Errorf("could not write %s!%s: %w", name, ref, err)
				}
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("could not write workbook: %w", err)
	}
	return nil
}
