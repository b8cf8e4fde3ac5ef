package ui

import (
	"fmt"
	"strings"

	"github.com/user/traffic-silencer/internal/core"
	"github.com/user/traffic-silencer/internal/reconcile"
)

const (
	// ProcessesTitle is the processes window title.
	ProcessesTitle = "Traffic Silencer - Processes"
	// NoPath stands in for an executable path that could not be resolved.
	NoPath = "-"
)

// StatusLine summarizes a pass for the tray.
func StatusLine(status *core.Status) string {
	return fmt.Sprintf("%d executables, %d blocked", status.Executables, status.Blocked)
}

// ProcessLabels returns the display labels of the group's processes.
func ProcessLabels(g reconcile.GroupView) []string {
	labels := make([]string, len(g.Processes))
	for i, p := range g.Processes {
		labels[i] = p.Label()
	}
	return labels
}

// GroupLine renders one group as a single log line.
func GroupLine(g reconcile.GroupView) string {
	mark := " "
	if g.Blocked {
		mark = "x"
	}
	path := g.Path
	if path == "" {
		path = NoPath
	}
	return fmt.Sprintf("[%s] %s (%d) %s: %s", mark, g.Name, len(g.Processes), path, strings.Join(ProcessLabels(g), ", "))
}

// ToggleFailure is the message shown when a rule command did not apply.
func ToggleFailure(name string, blocked bool) string {
	action := "block"
	if !blocked {
		action = "unblock"
	}
	return "Failed to " + action + " " + name + ". See the log for details."
}

// RuleMessage returns the message of a RULE log line.
func RuleMessage(line string) (string, bool) {
	const marker = "RULE: "
	i := strings.Index(line, marker)
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(line[i+len(marker):]), true
}

// Shorten cuts s to at most max runes, ending with "..." when cut.
func Shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// TailLines returns the last n lines of text.
func TailLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
