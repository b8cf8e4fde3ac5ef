package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/traffic-silencer/internal/logger"
)

func runLogs(t *testing.T, args ...string) string {
	t.Helper()
	logsClear = false
	logsTail = 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestLogsPrintsAndClears(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("version: 1\nrefresh_interval: 5\nlog:\n  dir: %q\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))
	logPath := filepath.Join(dir, logger.FileName)
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0644))

	assert.Equal(t, "one\ntwo\nthree\n", runLogs(t, "logs", "--config", cfgPath))
	assert.Equal(t, "two\nthree\n", runLogs(t, "logs", "--config", cfgPath, "-n", "2"))

	assert.Contains(t, runLogs(t, "logs", "--config", cfgPath, "--clear"), "Cleared")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, data)
}
