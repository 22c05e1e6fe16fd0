// Package batch provides the CLI command for converting many workbooks.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetcanvas/internal/config"
	conv "github.com/klytics/sheetcanvas/internal/formats/convert"
	"github.com/klytics/sheetcanvas/internal/logging"
	"github.com/klytics/sheetcanvas/internal/output"
	"github.com/klytics/sheetcanvas/internal/progress"
)

type batchResultItem struct {
	File     string `json:"file"`
	Status   string `json:"status"`
	Output   string `json:"output,omitempty"`
	Sheets   int    `json:"sheets,omitempty"`
	Elements int    `json:"elements,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
	Absent   int    `json:"absent,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewCommand returns the batch subcommand.
func NewCommand() *cobra.Command {
	var (
		format      string
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <glob-pattern>",
		Short: "Convert every workbook matching a glob pattern",
		Long: `Converts all workbooks matching a glob pattern and writes one layout file per
workbook into the output directory.

On error, the batch logs the failure and continues to the next file. Results
are reported in input order whatever the concurrency.

Example:
  sheetcanvas batch 'reports/*.xlsx' --out-dir layouts --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			logger := logging.FromContext(cmd.Context())

			pattern := args[0]
			files, err := filepath.Glob(pattern)
			if err != nil {
				return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
			}
			sort.Strings(files)
			if len(files) == 0 {
				return fmt.Errorf("no files matched pattern %q", pattern)
			}

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
				outDir = "."
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("could not create output directory %s: %w", outDir, err)
			}

			converter := conv.New(engine)
			bar := progress.New("Converting", len(files))
			results := make([]batchResultItem, len(files))
			outputs := conv.OutputPaths(files, outDir, f)

			process := func(idx int, file string) {
				item := convertFile(cmd, converter, file, outputs[idx], f)
				if item.Error != "" {
					logger.Warn("Conversion failed", "file", file, "err", item.Error)
					bar.Done(file, fmt.Errorf("%s", item.Error))
				} else {
					bar.Done(file, nil)
				}
				results[idx] = item
			}

			if concurrency <= 1 {
				for i, file := range files {
					process(i, file)
				}
			} else {
				sem := make(chan struct{}, concurrency)
				var wg sync.WaitGroup
				for i, file := range files {
					wg.Add(1)
					go func(idx int, path string) {
						defer wg.Done()
						sem <- struct{}{}
						defer func() { <-sem }()
						process(idx, path)
					}(i, file)
				}
				wg.Wait()
			}
			bar.Finish()

			succeeded := 0
			for _, r := range results {
				if r.Status == "ok" {
					succeeded++
				}
			}

			if jsonFlag {
				return output.FprintJSON(cmd.OutOrStdout(), "batch", results)
			}
			w := cmd.OutOrStdout()
			for _, r := range results {
				if r.Status == "ok" {
					fmt.Fprintf(w, "Converted: %s → %s (%d elements, %d absent, %d skipped)\n", r.File, r.Output, r.Elements, r.Absent, r.Skipped)
				} else {
					fmt.Fprintf(w, "Failed:    %s: %s\n", r.File, r.Error)
				}
			}
			fmt.Fprintf(w, "\nProcessed %d files. %d succeeded, %d failed.\n", len(files), succeeded, len(files)-succeeded)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json | yaml | text (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory for layout files (default: current directory)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of parallel workers")

	return cmd
}

func convertFile(cmd *cobra.Command, converter *conv.Converter, file, dest string, f output.Format) batchResultItem {
	item := batchResultItem{File: file, Status: "ok"}

	doc, err := converter.Document(cmd.Context(), file, "")
	if err != nil {
		item.Status, item.Error = "error", err.Error()
		return item
	}
	encoded, err := conv.Encode(doc, f, output.RenderOptions{Skips: true})
	if err != nil {
		item.Status, item.Error = "error", err.Error()
		return item
	}
	item.Output = dest
	if err := conv.WriteFile(item.Output, encoded); err != nil {
		item.Status, item.Error = "error", err.Error()
		return item
	}

	item.Sheets = len(doc.Sheets)
	for _, s := range doc.Sheets {
		item.Elements += len(s.Elements)
		item.Skipped += len(s.Skips)
		item.Absent += len(s.Absent)
	}
	return item
}
