// Package watch provides the "sheetcanvas watch" CLI commands.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/config"
	conv "github.com/klytics/sheetcanvas/internal/formats/convert"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/output"
	w "github.com/klytics/sheetcanvas/internal/watch"
)

// NewCommand creates the "watch" command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconvert workbooks when they change",
		Long: `Watch directories for new or modified workbooks and write their layout
into an output directory each time they are saved.

Example:
  sheetcanvas watch start ./reports --out-dir ./layouts
  sheetcanvas watch status
  sheetcanvas watch stop`,
	}

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newStartCmd() *cobra.Command {
	var (
		pattern   string
		recursive bool
		debounce  int
		outDir    string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "start <directory> [directory...]",
		Short: "Start watching directories for workbook changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())

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
			if outDir == "" {
				outDir = "layouts"
			}

			wc := w.Config{
				Directories: args,
				Pattern:     pattern,
				Recursive:   recursive,
				Debounce:    debounce,
				OutDir:      outDir,
				Format:      f.String(),
			}

			converter := conv.New(engine)
			handler := func(ctx context.Context, path string) error {
				_, err := converter.Convert(ctx, conv.Request{
					Input:  path,
					Output: conv.OutputPath(path, outDir, f),
					Format: f,
					Skips:  true,
				})
				return err
			}

			watcher, err := w.New(wc, handler, logger)
			if err != nil {
				return err
			}

			configDir := w.DefaultConfigDir()
			if err := w.WritePIDFile(configDir); err != nil {
				logger.Warn("Could not write PID file", "err", err)
			}
			defer w.RemovePIDFile(configDir)
			if err := w.SaveConfig(configDir, watcher.Config); err != nil {
				logger.Warn("Could not save watch config", "err", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d directory(ies) for %s files → %s\n",
				len(args), strings.Join(watcher.Config.Extensions, ", "), outDir)
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(cmd.OutOrStdout(), "\nStopping watcher...")
					cancel()
				case <-ctx.Done():
				}
			}()

			go saveStatus(ctx, watcher, configDir)
			err = watcher.Start(ctx)
			_ = w.SaveStatus(configDir, watcher.GetStatus())
			return err
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "Only convert files whose name matches this glob")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for layout files (default: layouts)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json | yaml | text (default from config)")

	return cmd
}

// saveStatus persists the watcher status for "watch status" until ctx ends.
func saveStatus(ctx context.Context, watcher *w.Watcher, dir string) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.SaveStatus(dir, watcher.GetStatus())
		}
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()
			pid, err := w.ReadPIDFile(configDir)
			if err != nil {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(configDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}
			w.RemovePIDFile(configDir)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.FprintJSON(cmd.OutOrStdout(), "watch stop", map[string]any{
					"stopped": true,
					"pid":     pid,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current watcher status",
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := w.DefaultConfigDir()

			pid, err := w.ReadPIDFile(configDir)
			running := err == nil

			// Signal 0 checks that the process still exists
			if running {
				process, err := os.FindProcess(pid)
				if err != nil || process.Signal(syscall.Signal(0)) != nil {
					running = false
					w.RemovePIDFile(configDir)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if !running {
				if jsonOut {
					return output.FprintJSON(out, "watch status", w.Status{Running: false, Directories: []string{}})
				}
				fmt.Fprintln(out, "Watcher is not running")
				return nil
			}

			status := w.Status{Running: true, PID: pid, Directories: []string{}}
			if saved, err := w.LoadStatus(configDir); err == nil {
				status.EventCount, status.Failures, status.StartedAt = saved.EventCount, saved.Failures, saved.StartedAt
			}
			wc, _ := w.LoadConfig(configDir)
			if wc != nil {
				status.Directories = wc.Directories
			}

			if jsonOut {
				return output.FprintJSON(out, "watch status", status)
			}

			fmt.Fprintf(out, "Watcher is running (PID %d)\n", pid)
			if wc != nil {
				fmt.Fprintf(out, "  Directories: %s\n", strings.Join(wc.Directories, ", "))
				fmt.Fprintf(out, "  Output:      %s (%s)\n", wc.OutDir, wc.Format)
				fmt.Fprintf(out, "  Recursive:   %v\n", wc.Recursive)
			}
			fmt.Fprintf(out, "  Converted:   %d (%d failed)\n", status.EventCount, status.Failures)
			if status.StartedAt != "" {
				fmt.Fprintf(out, "  Started:     %s\n", status.StartedAt)
			}
			return nil
		},
	}
}
