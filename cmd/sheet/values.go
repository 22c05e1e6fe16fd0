package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/output"
)

type valuesJSONOutput struct {
	File   string `json:"file"`
	Sheets int    `json:"sheets"`
	Rows   int    `json:"rows"`
}

func newValuesCommand() *cobra.Command {
	var (
		outPath   string
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "values <file.xlsx> --out <values.xlsx>",
		Short: "Write a values-only copy of a workbook",
		Long: `Copies the cell values of a workbook into a new .xlsx file without styles,
merges or drawings. Converting the copy shows the text layer of the layout
on its own.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			if outPath == "" {
				return fmt.Errorf("--out is required: specify the output .xlsx path\n\nExample: sheetcanvas sheet values report.xlsx --out report.values.xlsx")
			}
			if !strings.HasSuffix(strings.ToLower(outPath), ".xlsx") {
				outPath += ".xlsx"
			}

			f, err := open(cmd, args)
			if err != nil {
				return err
			}
			defer f.Close()

			tables := make([]xlsx.Table, 0)
			rows := 0
			for _, name := range sheetNames(f, sheetName) {
				t, err := f.Table(name)
				if err != nil {
					return err
				}
				tables = append(tables, *t)
				rows += t.RowCount()
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}
			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("could not create %s: %w", outPath, err)
			}
			if err := xlsx.WriteTables(out, tables); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("could not write %s: %w", outPath, err)
			}

			if jsonFlag {
				return output.FprintJSON(cmd.OutOrStdout(), "sheet values", valuesJSONOutput{File: outPath, Sheets: len(tables), Rows: rows})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheet(s), %d row(s) to %s\n", len(tables), rows, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .xlsx path (required)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Copy only the named sheet")

	return cmd
}
