//go:build !windows

package process

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProberSelf(t *testing.T) {
	t.Parallel()

	p := NewProber()
	require.True(t, p.CanAccess(os.Getpid()))

	path, err := p.ExecutablePath(os.Getpid())
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestProberMissingProcess(t *testing.T) {
	t.Parallel()

	p := NewProber()
	const missing = 1<<30 + 7
	assert.False(t, p.CanAccess(missing))

	_, err := p.ExecutablePath(missing)
	assert.Error(t, err)
}
