package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"svc.exe":     "svc",
		"SVC.EXE":     "SVC",
		"chrome.Exe":  "chrome",
		"bash":        "bash",
		".exe":        ".exe",
		"":            "",
		"tool.exe.sh": "tool.exe.sh",
		"a.exe":       "a",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestEntryLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "svc (PID: 42)", Entry{PID: 42, Name: "svc"}.Label())
}

func TestListIncludesSelf(t *testing.T) {
	t.Parallel()

	entries, err := NewLister().List()
	require.NoError(t, err)

	self := os.Getpid()
	found := false
	for _, e := range entries {
		assert.NotEmpty(t, e.Name)
		if e.PID == self {
			found = true
		}
	}
	assert.True(t, found, "own pid %d not listed", self)
}
