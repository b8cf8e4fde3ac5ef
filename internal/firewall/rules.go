package firewall

import (
	"bufio"
	"io"
	"strings"
)

const (
	rulePrefix     = "Block "
	ruleSeparator  = " - "
	listNamePrefix = "Rule Name:"
)

// RuleName builds the firewall rule name for an executable path:
// "Block {fileName} - {fullPath}".
func RuleName(executablePath string) string {
	return rulePrefix + fileName(executablePath) + ruleSeparator + executablePath
}

// ExtractPath recovers the executable path from a rule name created by
// RuleName. Names that do not follow the pattern return false.
//
// The split point is the first " - " whose right-hand side has a file name
// equal to the left-hand side, so file names containing " - " still round
// trip. Rules named by hand fall back to everything after the first "- ".
func ExtractPath(ruleName string) (string, bool) {
	if !strings.HasPrefix(ruleName, rulePrefix) {
		return "", false
	}
	rest := ruleName[len(rulePrefix):]

	for offset := 0; ; {
		i := strings.Index(rest[offset:], ruleSeparator)
		if i < 0 {
			break
		}
		i += offset
		candidate := rest[i+len(ruleSeparator):]
		if candidate != "" && fileName(candidate) == rest[:i] {
			return candidate, true
		}
		offset = i + 1
	}

	i := strings.Index(rest, "- ")
	if i < 0 {
		return "", false
	}
	path := strings.TrimSpace(rest[i+2:])
	if path == "" {
		return "", false
	}
	return path, true
}

// ParseRuleListing reads "netsh advfirewall firewall show rule" output and
// returns the blocked executable paths keyed by their lower-cased form.
// Only "Rule Name:" lines are inspected; anything else is ignored.
func ParseRuleListing(r io.Reader) map[string]string {
	rules := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, listNamePrefix) {
			continue
		}
		name := strings.TrimSpace(line[len(listNamePrefix):])
		path, ok := ExtractPath(name)
		if !ok {
			continue
		}
		rules[strings.ToLower(path)] = path
	}

	return rules
}

// fileName returns the last element of a Windows or slash-separated path.
func fileName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
