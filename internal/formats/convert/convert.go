// Package convert turns workbook files into layout documents: the ordered,
// positioned elements of every requested sheet, encoded as JSON, YAML or a
// text listing.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klytics/sheetcanvas/internal/engine"
	"github.com/klytics/sheetcanvas/internal/errors"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/output"
)

// SupportedExtensions lists the workbook extensions accepted as input.
var SupportedExtensions = []string{".xlsx", ".xlsm"}

// Document is the layout of one workbook.
type Document struct {
	File   string           `json:"file" yaml:"file"`
	Sheets []*engine.Result `json:"sheets" yaml:"sheets"`
}

// Request describes one conversion.
type Request struct {
	Input string
	// Output is the destination file; empty returns the encoding only.
	Output string
	// Sheet selects a single sheet; empty converts every sheet.
	Sheet  string
	Format output.Format
	// Skips adds the skip log to text output.
	Skips bool
}

// Converter runs the layout engine over workbook files. It is safe for
// concurrent use when its engine's measurer is.
type Converter struct {
	engine *engine.Engine
}

// New creates a converter around e.
func New(e *engine.Engine) *Converter {
	return &Converter{engine: e}
}

// Document converts the workbook at path.
func (c *Converter) Document(ctx context.Context, path, sheet string) (*Document, error) {
	if !Supported(path) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "expected an .xlsx file, got %q", filepath.Base(path))
	}
	f, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc := &Document{File: path}
	if sheet != "" {
		res, err := c.engine.Convert(ctx, f, sheet)
		if err != nil {
			return nil, err
		}
		doc.Sheets = []*engine.Result{res}
		return doc, nil
	}
	doc.Sheets, err = c.engine.ConvertAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Convert converts req.Input and returns the encoded document. When
// req.Output is set the encoding is also written there.
func (c *Converter) Convert(ctx context.Context, req Request) (string, error) {
	doc, err := c.Document(ctx, req.Input, req.Sheet)
	if err != nil {
		return "", err
	}
	result, err := Encode(doc, req.Format, output.RenderOptions{Skips: req.Skips})
	if err != nil {
		return "", err
	}

	if req.Output != "" {
		if err := WriteFile(req.Output, result); err != nil {
			return "", err
		}
	}
	return result, nil
}

// WriteFile writes an encoded document to path, creating its directory.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}

// Encode renders doc in format f.
func Encode(doc *Document, f output.Format, opts output.RenderOptions) (string, error) {
	var buf bytes.Buffer
	if f == output.FormatText {
		output.RenderResults(&buf, doc.Sheets, opts)
		return buf.String(), nil
	}
	if err := output.NewWriterTo(&buf, f).Write(doc); err != nil {
		return "", fmt.Errorf("could not encode %s: %w", doc.File, err)
	}
	return buf.String(), nil
}

// OutputPath returns the destination of input inside dir for format f.
func OutputPath(input, dir string, f output.Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+f.Ext())
}

// OutputPaths returns one destination per input inside dir. Inputs that
// share a base name get a numeric suffix in input order, so no two inputs
// write the same file.
func OutputPaths(inputs []string, dir string, f output.Format) []string {
	out := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		path := OutputPath(input, dir, f)
		base := strings.TrimSuffix(path, f.Ext())
		for n := 2; used[strings.ToLower(path)]; n++ {
			path = fmt.Sprintf("%s-%d%s", base, n, f.Ext())
		}
		used[strings.ToLower(path)] = true
		out[i] = path
	}
	return out
}

// Supported reports whether path has a workbook extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
