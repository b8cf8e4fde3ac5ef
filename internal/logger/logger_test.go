package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Dir: dir}))
	defer Close()

	Info("collected %d groups", 3)
	Warning("rule add failed for %s", `C:\a\svc.exe`)

	logs, err := ReadLogs()
	require.NoError(t, err)
	assert.Contains(t, logs, "INFO: collected 3 groups")
	assert.Contains(t, logs, `WARN: rule add failed for C:\a\svc.exe`)
	assert.True(t, strings.HasPrefix(GetLogPath(), dir))
}

func TestDebugSuppressedUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetEcho(&buf)
	defer SetEcho(nil)

	SetDebug(false)
	Debug("hidden line")
	assert.NotContains(t, buf.String(), "hidden line")

	SetDebug(true)
	defer SetDebug(false)
	Debug("visible line")
	assert.Contains(t, buf.String(), "DEBUG: visible line")
}

func TestClearLogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Dir: dir}))
	defer Close()

	Info("before clear")
	require.NoError(t, ClearLogs())
	Info("after clear")

	logs, err := ReadLogs()
	require.NoError(t, err)
	assert.NotContains(t, logs, "before clear")
	assert.Contains(t, logs, "after clear")
}

func TestListenerReceivesLines(t *testing.T) {
	got := make(chan string, 4)
	AddListener(func(line string) {
		if strings.Contains(line, "listener-line") {
			got <- line
		}
	})

	Error("listener-line %d", 1)

	select {
	case line := <-got:
		assert.Contains(t, line, "ERROR: listener-line 1")
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not called")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	SetEcho(&buf)
	defer SetEcho(nil)

	done := make(chan struct{})
	SafeGo("panicky", func() {
		defer close(done)
		panic("boom")
	})
	<-done

	// Recover runs after the deferred close; give it a moment to log.
	assert.Eventually(t, func() bool {
		logMutex.Lock()
		defer logMutex.Unlock()
		return strings.Contains(buf.String(), "PANIC in panicky: boom")
	}, 2*time.Second, 10*time.Millisecond)
}
