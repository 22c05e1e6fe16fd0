package xlsx

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is the plain cell values of one worksheet.
type Table struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Tables returns the values of every sheet in workbook order.
func (f *File) Tables() ([]Table, error) {
	tables := make([]Table, 0, len(f.sheets))
	for _, s := range f.sheets {
		t, err := f.Table(s.Name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, nil
}

// Table returns the values of one sheet.
func (f *File) Table(name string) (*Table, error) {
	if _, err := f.sheet(name); err != nil {
		return nil, err
	}
	rows, err := f.x.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
	}
	return &Table{Name: name, Rows: rows}, nil
}

// ToCSV renders the table as CSV.
func (t *Table) ToCSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// WriteAll only fails on writer errors, which a bytes.Buffer never returns.
	_ = w.WriteAll(t.Rows)
	return buf.String()
}

// RowCount returns the number of rows with at least one non-empty cell.
func (t *Table) RowCount() int {
	count := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if cell != "" {
				count++
				break
			}
		}
	}
	return count
}
