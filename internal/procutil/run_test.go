//go:build !windows

package procutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExitCode(t *testing.T) {
	t.Parallel()

	out, code, err := Run(context.Background(), "sh", "-c", "echo hello; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Contains(t, string(out), "hello")
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	_, code, err := Run(context.Background(), "sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunMissingBinary(t *testing.T) {
	t.Parallel()

	_, code, err := Run(context.Background(), "definitely-not-a-real-binary-4711")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
