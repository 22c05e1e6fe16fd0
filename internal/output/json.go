package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klytics/sheetcanvas/cmd/version"
	"github.com/klytics/sheetcanvas/internal/errors"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing file, unknown sheet
	ExitSystemError = 2 // IO error, broken package, internal failure
)

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK        bool   `json:"ok"`
	Command   string `json:"command"`
	Version   string `json:"version"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Code      int    `json:"code,omitempty"`
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeSheetNotFound:
		return ExitUserError
	case "":
		// Uncoded errors come from flag parsing and argument checks.
		return ExitUserError
	default:
		return ExitSystemError
	}
}

// FprintJSON writes a standard success JSON result to w.
func FprintJSON(w io.Writer, cmd string, data any) error {
	result := JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// PrintJSONError writes a standard error JSON result to stdout.
func PrintJSONError(cmd string, err error) error {
	return FprintJSONError(os.Stdout, cmd, err)
}

// FprintJSONError writes a standard error JSON result to w.
func FprintJSONError(w io.Writer, cmd string, err error) error {
	result := JSONResult{
		OK:        false,
		Command:   cmd,
		Version:   version.Version,
		Error:     err.Error(),
		ErrorCode: string(errors.GetCode(err)),
		Code:      ExitCode(err),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}
