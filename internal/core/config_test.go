package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/traffic-silencer/internal/config"
	"github.com/user/traffic-silencer/internal/logger"
)

func TestSetDebugLoggingPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s := New(time.Second, &fakeRules{}, &fakeCollector{})
	s.configManager = config.NewManager(path)
	require.NoError(t, s.ReloadConfig())
	t.Cleanup(func() { logger.SetDebug(false) })

	assert.False(t, s.GetConfig().Log.Debug)
	require.NoError(t, s.SetDebugLogging(true))
	assert.True(t, s.GetConfig().Log.Debug)

	reloaded := config.NewManager(path)
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Get().Log.Debug)
}

func TestReloadConfigPicksUpFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	s := New(time.Second, &fakeRules{}, &fakeCollector{})
	s.configManager = config.NewManager(path)
	require.NoError(t, s.ReloadConfig())
	t.Cleanup(func() { logger.SetDebug(false) })

	require.NoError(t, os.WriteFile(path, []byte("version: 1\nrefresh_interval: 9\nlog:\n  debug: true\n"), 0600))
	require.NoError(t, s.ReloadConfig())
	assert.Equal(t, 9, s.GetConfig().RefreshInterval)
	assert.True(t, s.GetConfig().Log.Debug)

	require.NoError(t, os.WriteFile(path, []byte("version: 1\nrefresh_interval: 0\n"), 0600))
	assert.Error(t, s.ReloadConfig())
	assert.Equal(t, 9, s.GetConfig().RefreshInterval)
}

func TestSetDebugLoggingWithoutFile(t *testing.T) {
	t.Parallel()

	s := New(time.Second, &fakeRules{}, &fakeCollector{})
	assert.Error(t, s.SetDebugLogging(true))
}
