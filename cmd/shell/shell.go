// Package shell provides the "sheetcanvas shell" interactive REPL command.
package shell

import (
	"fmt"

	"github.com/spf13/cobra"

	shellpkg "github.com/klytics/sheetcanvas/internal/shell"
)

// NewCommand creates the "shell" command. Lines are executed by runner.
func NewCommand(runner shellpkg.CommandRunner) *cobra.Command {
	var (
		evalCmd  string
		workbook string
		sheet    string
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive sheetcanvas shell",
		Long: `Start an interactive REPL with tab completion and history.

Open a workbook once with 'open <file.xlsx>' and select a sheet with
'select <name>'; convert and sheet commands that omit them use the
session's workbook and sheet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := shellpkg.NewSession(runner)
			if err != nil {
				return err
			}
			session.SetOutput(cmd.OutOrStdout())
			session.Workbook, session.Sheet = workbook, sheet

			if evalCmd != "" {
				output, err := session.Eval(cmd.Context(), evalCmd)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
				return nil
			}
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single command and exit")
	cmd.Flags().StringVar(&workbook, "open", "", "Workbook to open at start")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to select at start")
	return cmd
}
