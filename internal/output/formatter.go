// Package output provides formatting utilities for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format int

const (
	// FormatText is a human-readable listing.
	FormatText Format = iota
	// FormatJSON is JSON output.
	FormatJSON
	// FormatYAML is YAML output.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + f.String()
}

// ParseFormat parses json, yaml or text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q — supported: json, yaml, text", s)
	}
}

// Writer handles formatted output to a destination.
type Writer struct {
	dest   io.Writer
	format Format
}

// NewWriterTo creates a writer with the given format writing to w.
func NewWriterTo(w io.Writer, format Format) *Writer {
	return &Writer{
		dest:   w,
		format: format,
	}
}

// Format returns the writer's format.
func (w *Writer) Format() Format {
	return w.format
}

// Write encodes v in the writer's format. Text output falls back to JSON
// for values without a text rendering.
func (w *Writer) Write(v any) error {
	if w.format == FormatYAML {
		return w.WriteYAML(v)
	}
	return w.WriteJSON(v)
}

// WriteJSON encodes a value as pretty-printed JSON.
func (w *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(w.dest)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML encodes a value as YAML.
func (w *Writer) WriteYAML(v any) error {
	enc := yaml.NewEncoder(w.dest)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not encode YAML: %w", err)
	}
	return enc.Close()
}
