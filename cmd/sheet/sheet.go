// Package sheet provides CLI commands for inspecting worksheets.
package sheet

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
)

// NewCommand returns the sheet subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Inspect worksheet values, grid geometry, merges and anchors",
		Long:  "Commands that show the intermediate data a conversion is built from: cell values, row and column offsets, merged regions and drawing anchors.",
	}

	cmd.AddCommand(newReadCommand())
	cmd.AddCommand(newOffsetsCommand())
	cmd.AddCommand(newMergesCommand())
	cmd.AddCommand(newAnchorsCommand())
	cmd.AddCommand(newValuesCommand())

	return cmd
}

// open opens the workbook named by args, or reads one from stdin when
// args is empty or "-".
func open(cmd *cobra.Command, args []string) (*xlsx.File, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("could not read from stdin: %w", err)
		}
		if len(data) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no input provided: pass an .xlsx file path or pipe data to stdin")
		}
		return xlsx.OpenBytes(data)
	}

	path := args[0]
	ext := strings.ToLower(path)
	if !strings.HasSuffix(ext, ".xlsx") && !strings.HasSuffix(ext, ".xlsm") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "expected an .xlsx file, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not open %s", path)
	}
	return xlsx.Open(path)
}

// sheetNames returns the requested sheet, or every sheet in workbook order.
func sheetNames(f *xlsx.File, sheet string) []string {
	if sheet != "" {
		return []string{sheet}
	}
	return f.SheetNames()
}
