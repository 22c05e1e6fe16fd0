// Package shell provides the interactive sheetcanvas REPL.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// CommandRunner executes a sheetcanvas command and writes its output.
// It is supplied by the cmd/shell package to avoid import cycles.
type CommandRunner func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// Session manages an interactive shell session. A session remembers an
// open workbook and a selected sheet and fills them into commands that
// omit them.
type Session struct {
	Workbook       string
	Sheet          string
	LastOutput     string
	CommandHistory []string
	HistoryFile    string
	StartTime      time.Time

	// KnownCommands is the list of top-level commands for completion.
	KnownCommands []string

	runner CommandRunner
	out    io.Writer
}

// subcommands lists the completions below each top-level command.
var subcommands = map[string][]string{
	"sheet":  {"read", "offsets", "merges", "anchors", "values"},
	"watch":  {"start", "stop", "status"},
	"config": {"init", "show", "get", "set", "path", "reset", "validate", "env"},
}

// workbookCommands take a workbook argument and a --sheet flag.
var workbookCommands = map[string]bool{"convert": true, "sheet": true}

// NewSession creates a new interactive session running commands with runner.
func NewSession(runner CommandRunner) (*Session, error) {
	if runner == nil {
		return nil, fmt.Errorf("shell runner not configured")
	}
	home, _ := os.UserHomeDir()
	histFile := filepath.Join(home, ".sheetcanvas", "shell_history")
	os.MkdirAll(filepath.Dir(histFile), 0755)

	return &Session{
		HistoryFile: histFile,
		StartTime:   time.Now(),
		KnownCommands: []string{
			"convert", "sheet", "batch", "watch",
			"config", "completion", "version",
			"open", "select", "status",
			"help", "exit", "quit", "history",
		},
		runner: runner,
		out:    os.Stdout,
	}, nil
}

// SetOutput redirects session messages, for tests.
func (s *Session) SetOutput(w io.Writer) {
	s.out = w
}

// Run starts the REPL loop. Blocks until 'exit' or Ctrl+D.
func (s *Session) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(s.buildCompleter()...)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     s.HistoryFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(s.out, "sheetcanvas — Interactive Shell")
	fmt.Fprintln(s.out, "Type 'help' for commands, 'exit' to quit.")
	fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if done := s.Handle(ctx, line); done {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
	return nil
}

// Handle processes one input line. It reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.CommandHistory = append(s.CommandHistory, line)

	fields := strings.Fields(line)
	switch fields[0] {
	case "exit", "quit":
		fmt.Fprintf(s.out, "\nSession ended. %d commands run in %s.\n",
			len(s.CommandHistory)-1, formatDuration(time.Since(s.StartTime)))
		return true
	case "help":
		s.printHelp()
	case "history":
		for i, cmd := range s.CommandHistory {
			fmt.Fprintf(s.out, "  %d  %s\n", i+1, cmd)
		}
	case "open":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "Usage: open <file.xlsx>")
			break
		}
		if _, err := os.Stat(fields[1]); err != nil {
			fmt.Fprintf(s.out, "Error: %s\n", err)
			break
		}
		s.Workbook, s.Sheet = fields[1], ""
		fmt.Fprintf(s.out, "Workbook: %s\n", s.Workbook)
	case "select":
		s.Sheet = strings.TrimSpace(strings.TrimPrefix(line, "select"))
		if s.Sheet == "" {
			fmt.Fprintln(s.out, "Sheet selection cleared")
		} else {
			fmt.Fprintf(s.out, "Sheet: %s\n", s.Sheet)
		}
	case "status":
		fmt.Fprintf(s.out, "Workbook: %s\nSheet:    %s\n", orNone(s.Workbook), orNone(s.Sheet))
	default:
		output, err := s.Eval(ctx, line)
		if output != "" {
			fmt.Fprint(s.out, output)
			if !strings.HasSuffix(output, "\n") {
				fmt.Fprintln(s.out)
			}
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %s\n", err)
		}
	}
	return false
}

// Eval runs a single command string and returns its output.
func (s *Session) Eval(ctx context.Context, command string) (string, error) {
	args := s.Expand(strings.Fields(command))
	if len(args) == 0 {
		return "", nil
	}

	var stdout, stderr bytes.Buffer
	err := s.runner(ctx, args, &stdout, &stderr)

	output := stdout.String()
	s.LastOutput = output

	if errOut := stderr.String(); errOut != "" && err != nil {
		return output, fmt.Errorf("%s", strings.TrimSpace(errOut))
	}
	return output, err
}

// Expand fills the open workbook and selected sheet into workbook commands
// that do not name them.
func (s *Session) Expand(args []string) []string {
	if len(args) == 0 || !workbookCommands[args[0]] {
		return args
	}
	if args[0] == "sheet" && len(args) < 2 {
		return args
	}

	hasFile, hasSheet := false, false
	for _, a := range args[1:] {
		ext := strings.ToLower(filepath.Ext(a))
		if ext == ".xlsx" || ext == ".xlsm" {
			hasFile = true
		}
		if a == "--sheet" || strings.HasPrefix(a, "--sheet=") {
			hasSheet = true
		}
	}

	out := append([]string(nil), args...)
	if !hasFile && s.Workbook != "" {
		out = append(out, s.Workbook)
	}
	if !hasSheet && s.Sheet != "" {
		out = append(out, "--sheet", s.Sheet)
	}
	return out
}

// Complete returns tab-completion candidates for the given input.
func (s *Session) Complete(input string) []string {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return s.KnownCommands
	}

	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, cmd := range s.KnownCommands {
			if strings.HasPrefix(cmd, parts[0]) {
				matches = append(matches, cmd)
			}
		}
		sort.Strings(matches)
		return matches
	}

	last := parts[len(parts)-1]
	if strings.HasPrefix(last, "-") {
		return []string{"--sheet", "--format", "--out", "--skips", "--json", "--verbose"}
	}

	if len(parts) == 2 && !strings.HasSuffix(input, " ") {
		var matches []string
		for _, sub := range subcommands[parts[0]] {
			if strings.HasPrefix(sub, parts[1]) {
				matches = append(matches, sub)
			}
		}
		return matches
	}
	return nil
}

func (s *Session) prompt() string {
	if s.Workbook == "" {
		return "sheetcanvas> "
	}
	name := filepath.Base(s.Workbook)
	if s.Sheet != "" {
		name += ":" + s.Sheet
	}
	return fmt.Sprintf("sheetcanvas %s> ", name)
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "  Layout:     convert, sheet read/offsets/merges/anchors/values")
	fmt.Fprintln(s.out, "  Files:      batch, watch")
	fmt.Fprintln(s.out, "  System:     config, completion, version")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Shell commands:")
	fmt.Fprintln(s.out, "  open <file>     set the workbook used when a command names none")
	fmt.Fprintln(s.out, "  select <sheet>  set the sheet used when a command names none")
	fmt.Fprintln(s.out, "  status          show the open workbook and sheet")
	fmt.Fprintln(s.out, "  history         show command history")
	fmt.Fprintln(s.out, "  exit            exit the shell")
}

func (s *Session) buildCompleter() []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range s.KnownCommands {
		var subItems []readline.PrefixCompleterInterface
		for _, sub := range subcommands[cmd] {
			subItems = append(subItems, readline.PcItem(sub))
		}
		items = append(items, readline.PcItem(cmd, subItems...))
	}
	return items
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, sec)
}
