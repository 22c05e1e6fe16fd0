package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/klytics/sheetcanvas/internal/fixture"
	"github.com/klytics/sheetcanvas/internal/formats/xlsx"
	"github.com/klytics/sheetcanvas/internal/output"
)

// setup isolates config and progress output and returns a directory holding
// the sample workbook.
func setup(t *testing.T) (string, string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHEETCANVAS_NO_PROGRESS", "1")
	t.Setenv("SHEETCANVAS_JSON", "")

	dir := t.TempDir()
	data, err := fixture.Workbook()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "sample.xlsx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--no-color"))
	err := root.Execute()
	return stdout.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	setup(t)
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"convert", "sheet", "batch", "watch", "shell", "config", "completion", "version"} {
		if !strings.Contains(out, name) {
			t.Errorf("command %q missing from help", name)
		}
	}
}

func TestConvertJSON(t *testing.T) {
	_, path := setup(t)
	out, err := execute(t, "convert", path, "--json")
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		OK      bool   `json:"ok"`
		Command string `json:"command"`
		Data    struct {
			Sheets []struct {
				Sheet    string            `json:"sheet"`
				Elements []json.RawMessage `json:"elements"`
			} `json:"sheets"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !result.OK || result.Command != "convert" {
		t.Errorf("unexpected envelope ok=%v command=%q", result.OK, result.Command)
	}
	if len(result.Data.Sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(result.Data.Sheets))
	}
	if len(result.Data.Sheets[0].Elements) == 0 {
		t.Error("expected elements on the report sheet")
	}
}

func TestConvertTextToFile(t *testing.T) {
	dir, path := setup(t)
	dest := filepath.Join(dir, "out", "report.txt")

	out, err := execute(t, "convert", path, "--sheet", fixture.ReportSheet, "--format", "text", "--out", dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Converted:") {
		t.Errorf("expected confirmation, got %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Total"`) || !strings.Contains(string(data), "C3:E4") {
		t.Errorf("expected merged Total in listing:\n%s", data)
	}
}

func TestConvertErrors(t *testing.T) {
	dir, path := setup(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown sheet", []string{"convert", path, "--sheet", "Missing"}, output.ExitUserError},
		{"not a workbook", []string{"convert", filepath.Join(dir, "notes.txt")}, output.ExitUserError},
		{"bad format", []string{"convert", path, "--format", "xml"}, output.ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := output.ExitCode(err); got != tt.code {
				t.Errorf("exit code %d, want %d (%v)", got, tt.code, err)
			}
		})
	}
}

func TestSheetMerges(t *testing.T) {
	_, path := setup(t)
	out, err := execute(t, "sheet", "merges", path, "--sheet", fixture.ReportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "C3:E4") {
		t.Errorf("expected C3:E4 in output:\n%s", out)
	}
}

func TestSheetAnchors(t *testing.T) {
	_, path := setup(t)
	out, err := execute(t, "sheet", "anchors", path, "--sheet", fixture.NotesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Sheet: "+fixture.NotesSheet) {
		t.Errorf("expected sheet header:\n%s", out)
	}
	if strings.Contains(out, "(no drawing)") {
		t.Errorf("expected the shape anchor:\n%s", out)
	}
}

func TestSheetValues(t *testing.T) {
	dir, path := setup(t)
	dest := filepath.Join(dir, "values.xlsx")

	if _, err := execute(t, "sheet", "values", path, "--out", dest); err != nil {
		t.Fatal(err)
	}
	f, err := xlsx.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	names := f.SheetNames()
	if len(names) != 2 || names[0] != fixture.ReportSheet {
		t.Fatalf("unexpected sheets %v", names)
	}
	table, err := f.Table(fixture.ReportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows[0][0] != "Quarter" {
		t.Errorf("A1 = %q, want Quarter", table.Rows[0][0])
	}
}

func TestBatch(t *testing.T) {
	dir, path := setup(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "second.xlsx"), data, 0644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "layouts")

	out, err := execute(t, "batch", filepath.Join(dir, "*.xlsx"), "--out-dir", outDir, "--format", "yaml", "--concurrency", "2", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var result struct {
		Data []struct {
			File   string `json:"file"`
			Status string `json:"status"`
			Output string `json:"output"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Data))
	}
	if filepath.Base(result.Data[0].File) != "sample.xlsx" {
		t.Errorf("results out of input order: %s first", result.Data[0].File)
	}
	for _, r := range result.Data {
		if r.Status != "ok" {
			t.Errorf("%s: status %s", r.File, r.Status)
			continue
		}
		if _, err := os.Stat(r.Output); err != nil {
			t.Errorf("missing output %s", r.Output)
		}
	}
}

func TestBatchSameBaseName(t *testing.T) {
	dir, path := setup(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"east", "west"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, sub, "report.xlsx"), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	outDir := filepath.Join(dir, "layouts")

	out, err := execute(t, "batch", filepath.Join(dir, "*", "report.xlsx"), "--out-dir", outDir, "--concurrency", "2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Data []struct {
			Status string `json:"status"`
			Output string `json:"output"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Data))
	}
	want := []string{filepath.Join(outDir, "report.json"), filepath.Join(outDir, "report-2.json")}
	for i, r := range result.Data {
		if r.Status != "ok" || r.Output != want[i] {
			t.Errorf("result %d = %+v, want output %s", i, r, want[i])
		}
		if _, err := os.Stat(want[i]); err != nil {
			t.Errorf("missing output %s", want[i])
		}
	}
}

func TestShellEval(t *testing.T) {
	setup(t)
	out, err := execute(t, "shell", "--eval", "version --short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "dev" {
		t.Errorf("expected dev, got %q", out)
	}
}

func TestShellLinesDoNotShareJSONMode(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	if err := runInShell(context.Background(), []string{"version", "--short", "--json", "--no-color"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SHEETCANVAS_JSON"); got != "true" {
		t.Fatalf("expected JSON mode after --json, got %q", got)
	}

	if err := runInShell(context.Background(), []string{"version", "--short", "--no-color"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	got, set := os.LookupEnv("SHEETCANVAS_JSON")
	if set != startJSONSet || got != startJSONEnv {
		t.Errorf("expected startup JSON mode %q (set %v), got %q (set %v)", startJSONEnv, startJSONSet, got, set)
	}
}

func TestConfigSetGet(t *testing.T) {
	setup(t)
	if _, err := execute(t, "config", "set", "text.min_pt", "8"); err != nil {
		t.Fatal(err)
	}
	viper.Reset()
	out, err := execute(t, "config", "get", "text.min_pt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "text.min_pt: 8") {
		t.Errorf("unexpected output %q", out)
	}
}
