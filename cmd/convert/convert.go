// Package convert provides the "sheetcanvas convert" CLI command.
package convert

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/config"
	conv "github.com/klytics/sheetcanvas/internal/formats/convert"
	"github.com/klytics/sheetcanvas/internal/output"
	"github.com/klytics/sheetcanvas/internal/progress"
)

// NewCommand creates the "convert" command.
func NewCommand() *cobra.Command {
	var (
		format  string
		outPath string
		sheet   string
		skips   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file.xlsx>",
		Short: "Reconstruct the layout of a workbook",
		Long: `Convert rebuilds each worksheet as an ordered list of positioned elements:
cell backgrounds, borders and text, then pictures, shapes and text boxes from
the sheet's drawing, back to front.

Elements that cannot be placed are listed in the skip log; pictures whose
image is unavailable are listed as absent.

Examples:
  sheetcanvas convert report.xlsx
  sheetcanvas convert report.xlsx --sheet Summary --format text
  sheetcanvas convert report.xlsx --format yaml --out report.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, engine, err := config.LoadEngine(cmd.Context())
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Output.Format
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			if jsonFlag {
				f = output.FormatJSON
			}

			req := conv.Request{Input: args[0], Output: outPath, Sheet: sheet, Format: f, Skips: skips}
			converter := conv.New(engine)

			spinner := progress.NewSpinner("Converting " + args[0])
			spinner.Start()
			doc, err := converter.Document(cmd.Context(), req.Input, req.Sheet)
			if err != nil {
				spinner.Stop("Failed")
				return err
			}
			spinner.Stop(fmt.Sprintf("Converted %d sheet(s)", len(doc.Sheets)))

			if jsonFlag && outPath == "" {
				return output.FprintJSON(cmd.OutOrStdout(), "convert", doc)
			}

			result, err := conv.Encode(doc, f, output.RenderOptions{Skips: skips})
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := conv.WriteFile(outPath, result); err != nil {
					return err
				}
				if jsonFlag {
					return output.FprintJSON(cmd.OutOrStdout(), "convert", map[string]string{
						"input":  args[0],
						"output": outPath,
						"format": f.String(),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted: %s → %s\n", args[0], outPath)
				return nil
			}

			if f == output.FormatText && cmd.OutOrStdout() == os.Stdout && output.ShouldPage(result) {
				return output.Page(result)
			}
			fmt.Fprint(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json | yaml | text (default from config)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the layout to a file")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Convert only the named sheet")
	cmd.Flags().BoolVar(&skips, "skips", false, "Include the skip log in text output")

	return cmd
}
