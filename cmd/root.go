// Package cmd contains all CLI commands for the sheetcanvas binary.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/cmd/batch"
	"github.com/klytics/sheetcanvas/cmd/completion"
	cmdconfig "github.com/klytics/sheetcanvas/cmd/config"
	"github.com/klytics/sheetcanvas/cmd/convert"
	"github.com/klytics/sheetcanvas/cmd/sheet"
	cmdshell "github.com/klytics/sheetcanvas/cmd/shell"
	"github.com/klytics/sheetcanvas/cmd/version"
	cmdwatch "github.com/klytics/sheetcanvas/cmd/watch"
	"github.com/klytics/sheetcanvas/internal/config"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
)

// Process-level settings as found at startup. Each command run derives its
// own settings from these, so one shell line cannot leak into the next.
var (
	startJSONEnv, startJSONSet = os.LookupEnv("SHEETCANVAS_JSON")
	startNoColor               = color.NoColor
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetcanvas",
		Short: "Reconstruct spreadsheet layouts as positioned drawing elements",
		Long: `sheetcanvas reads .xlsx workbooks and rebuilds each worksheet as an ordered
list of positioned, styled elements: cell fills, borders and text, pictures,
shapes and text boxes, in pixel coordinates and back-to-front order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			color.NoColor = startNoColor || noColor || !cfg.Output.Color
			setJSONEnv(jsonOutput)

			level := logging.ParseLevel(cfg.Log.Level)
			if verbose {
				level = log.DebugLevel
			}
			logger := logging.New(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(convert.NewCommand())
	rootCmd.AddCommand(sheet.NewCommand())
	rootCmd.AddCommand(batch.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand(runInShell))
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code matching any
// returned error.
func Execute() {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		_ = output.PrintJSONError(cmd.CommandPath(), err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(output.ExitCode(err))
}

// setJSONEnv exports --json to helpers that read the environment, and
// restores the startup value when the flag is off.
func setJSONEnv(on bool) {
	switch {
	case on:
		os.Setenv("SHEETCANVAS_JSON", "true")
	case startJSONSet:
		os.Setenv("SHEETCANVAS_JSON", startJSONEnv)
	default:
		os.Unsetenv("SHEETCANVAS_JSON")
	}
}

// runInShell executes one shell line against a fresh command tree.
func runInShell(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
