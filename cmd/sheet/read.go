package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/output"
)

func newReadCommand() *cobra.Command {
	var sheetName string
	var csvOutput bool

	cmd := &cobra.Command{
		Use:   "read <file.xlsx>",
		Short: "Print the cell values of a workbook",
		Long:  "Reads an .xlsx file and prints its cell values as a table, CSV or JSON. Pass '-' to read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			f, err := open(cmd, args)
			if err != nil {
				return err
			}
			defer f.Close()

			tables := make([]xlsx.Table, 0)
			for _, name := range sheetNames(f, sheetName) {
				t, err := f.Table(name)
				if err != nil {
					return err
				}
				tables = append(tables, *t)
			}

			w := cmd.OutOrStdout()
			switch {
			case jsonFlag:
				return output.FprintJSON(w, "sheet read", tables)
			case csvOutput:
				for _, t := range tables {
					if len(tables) > 1 {
						fmt.Fprintf(cmd.ErrOrStderr(), "--- %s ---\n", t.Name)
					}
					fmt.Fprint(w, t.ToCSV())
				}
				return nil
			default:
				printTables(w, tables)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Read only the named sheet")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "Output as CSV")

	return cmd
}

func printTables(w io.Writer, tables []xlsx.Table) {
	headerStyle := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	for _, t := range tables {
		headerStyle.Fprintf(w, "Sheet: %s\n", t.Name)

		if len(t.Rows) == 0 {
			dim.Fprintln(w, "  (empty)")
			continue
		}

		colWidths := make([]int, 0)
		for _, row := range t.Rows {
			for j, cell := range row {
				for len(colWidths) <= j {
					colWidths = append(colWidths, 0)
				}
				colWidths[j] = max(colWidths[j], len(cell))
			}
		}
		for i := range colWidths {
			colWidths[i] = min(max(colWidths[i], 3), 40)
		}

		printRow(w, t.Rows[0], colWidths, color.New(color.Bold))
		dim.Fprint(w, "  ")
		for j, cw := range colWidths {
			if j > 0 {
				dim.Fprint(w, "+-")
			}
			dim.Fprint(w, strings.Repeat("-", cw+1))
		}
		dim.Fprintln(w)

		for i := 1; i < len(t.Rows); i++ {
			printRow(w, t.Rows[i], colWidths, nil)
		}

		dim.Fprintf(w, "  (%d rows)\n\n", t.RowCount())
	}
}

func printRow(w io.Writer, row []string, colWidths []int, style *color.Color) {
	fmt.Fprint(w, "  ")
	for j := range colWidths {
		if j > 0 {
			fmt.Fprint(w, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = row[j]
		}
		if len(cell) > colWidths[j] {
			cell = cell[:colWidths[j]-1] + "~"
		}
		padded := cell + strings.Repeat(" ", colWidths[j]-len(cell)+1)
		if style != nil {
			style.Fprint(w, padded)
		} else {
			fmt.Fprint(w, padded)
		}
	}
	fmt.Fprintln(w)
}
