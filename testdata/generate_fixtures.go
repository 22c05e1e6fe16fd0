//go:build ignore

// This program writes the sample workbook used by benchmarks and smoke tests.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klytics/sheetcanvas/internal/fixture"
)

func main() {
	data, err := fixture.Workbook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.xlsx: %v\n", err)
		os.Exit(1)
	}
	path := filepath.Join("testdata", "sample.xlsx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Println("Test fixtures generated successfully.")
}
