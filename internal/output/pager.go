package output

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ShouldPage returns true if output should be piped through a pager: stdout
// is a terminal, SHEETCANVAS_NO_PAGER is unset and the content is taller
// than the terminal ($LINES, or 40 rows).
func ShouldPage(content string) bool {
	if os.Getenv("SHEETCANVAS_NO_PAGER") != "" || !isTerminal() {
		return false
	}
	return strings.Count(content, "\n") > termHeight()
}

// Page pipes content through the user's preferred pager (PAGER env, or "less -R").
func Page(content string) error {
	fields := strings.Fields(os.Getenv("PAGER"))
	if len(fields) == 0 {
		fields = []string{"less", "-R"}
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func termHeight() int {
	if n, err := strconv.Atoi(os.Getenv("LINES")); err == nil && n > 0 {
		return n
	}
	return 40
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
