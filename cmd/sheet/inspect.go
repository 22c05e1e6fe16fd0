package sheet

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetcanvas/internal/config"
	"github.com/klytics/sheetcanvas/internal/engine"
	"github.com/klytics/sheetcanvas/internal/output"
)

// view prints one inspected sheet as text.
type view func(w io.Writer, g *engine.Geometry)

func newOffsetsCommand() *cobra.Command {
	return newInspectCommand("offsets", "Print the pixel offset of every row and column", printOffsets)
}

func newMergesCommand() *cobra.Command {
	return newInspectCommand("merges", "Print the resolved merged regions", printMerges)
}

func newAnchorsCommand() *cobra.Command {
	return newInspectCommand("anchors", "Print the drawing anchors with their pixel rectangles", printAnchors)
}

func newInspectCommand(name, short string, show view) *cobra.Command {
	var sheetName string

	cmd := &cobra.Command{
		Use:   name + " <file.xlsx>",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			f, err := open(cmd, args)
			if err != nil {
				return err
			}
			defer f.Close()

			_, e, err := config.LoadEngine(cmd.Context())
			if err != nil {
				return err
			}

			sheets := make([]*engine.Geometry, 0)
			for _, s := range sheetNames(f, sheetName) {
				g, err := e.Inspect(cmd.Context(), f, s)
				if err != nil {
					return err
				}
				sheets = append(sheets, g)
			}

			w := cmd.OutOrStdout()
			if jsonFlag {
				return output.FprintJSON(w, "sheet "+name, sheets)
			}
			for _, g := range sheets {
				color.New(color.Bold, color.FgCyan).Fprintf(w, "Sheet: %s", g.Sheet)
				color.New(color.FgHiBlack).Fprintf(w, "  (%d rows × %d cols, %.0f×%.0f px)\n", g.Rows, g.Cols, g.Bounds.W, g.Bounds.H)
				show(w, g)
				for _, warn := range g.Warnings {
					color.New(color.FgYellow).Fprintf(w, "  warning: %s\n", warn)
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Inspect only the named sheet")
	return cmd
}

func printOffsets(w io.Writer, g *engine.Geometry) {
	dim := color.New(color.FgHiBlack)
	for i := 0; i < g.Offsets.NumCols(); i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		x := g.Offsets.ColX(i)
		fmt.Fprintf(w, "  col %-4s x=%-8.2f", name, x)
		dim.Fprintf(w, " w=%.2f\n", g.Offsets.ColX(i+1)-x)
	}
	for i := 0; i < g.Offsets.NumRows(); i++ {
		y := g.Offsets.RowY(i)
		fmt.Fprintf(w, "  row %-4d y=%-8.2f", i+1, y)
		dim.Fprintf(w, " h=%.2f\n", g.Offsets.RowY(i+1)-y)
	}
}

func printMerges(w io.Writer, g *engine.Geometry) {
	if len(g.Regions) == 0 {
		color.New(color.FgHiBlack).Fprintln(w, "  (no merged regions)")
		return
	}
	for _, r := range g.Regions {
		fmt.Fprintf(w, "  %-12s %s\n", r.Ref(), rect(r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H))
	}
}

func printAnchors(w io.Writer, g *engine.Geometry) {
	if len(g.Anchors) == 0 && len(g.Skips) == 0 {
		color.New(color.FgHiBlack).Fprintln(w, "  (no drawing)")
		return
	}
	for _, a := range g.Anchors {
		size := rect(a.Rect.X, a.Rect.Y, a.Rect.W, a.Rect.H)
		if !a.SizeKnown {
			size = fmt.Sprintf("(%.1f, %.1f) natural size", a.Rect.X, a.Rect.Y)
		}
		fmt.Fprintf(w, "  #%-3d %-6s %-9s %-20s %s", a.Index, a.Kind, a.Object, a.Name, size)
		if a.TargetPath != "" {
			color.New(color.FgHiBlack).Fprintf(w, "  %s", a.TargetPath)
		}
		fmt.Fprintln(w)
	}
	skip := color.New(color.FgYellow)
	for _, s := range g.Skips {
		skip.Fprintf(w, "  #%-3d skipped   %-20s %s", s.Index, s.Name, s.Reason)
		if s.Detail != "" {
			skip.Fprintf(w, " (%s)", s.Detail)
		}
		fmt.Fprintln(w)
	}
}

func rect(x, y, width, height float64) string {
	return fmt.Sprintf("(%.1f, %.1f) %.1f×%.1f", x, y, width, height)
}
