package iconres

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertICO(t *testing.T, data []byte) {
	t.Helper()
	require.Greater(t, len(data), 22)
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[0:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[2:]), "ico type")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]), "image count")

	imgSize := binary.LittleEndian.Uint32(data[14:])
	offset := binary.LittleEndian.Uint32(data[18:])
	assert.Equal(t, len(data), int(imgSize+offset))
}

func TestDefaultIcon(t *testing.T) {
	t.Parallel()

	ico := DefaultIcon()
	assertICO(t, ico)
	assert.Equal(t, ico, DefaultIcon())
}

func TestAppIconDiffersFromDefault(t *testing.T) {
	t.Parallel()

	assertICO(t, AppIcon())
	assert.NotEqual(t, DefaultIcon(), AppIcon())
}

func TestResolveEmptyPath(t *testing.T) {
	t.Parallel()

	r := NewResolver(4)
	assert.Equal(t, DefaultIcon(), r.Resolve(""))
	assert.Equal(t, 0, r.Len())
}

func TestResolveFallsBackAndCaches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	notPE := filepath.Join(dir, "script.exe")
	require.NoError(t, os.WriteFile(notPE, []byte("#!/bin/sh\necho hi\n"), 0o755))

	r := NewResolver(4)
	assert.Equal(t, DefaultIcon(), r.Resolve(notPE))
	assert.Equal(t, DefaultIcon(), r.Resolve(filepath.Join(dir, "missing.exe")))
	assert.Equal(t, 2, r.Len())

	// Same path in a different case hits the same entry.
	r.Resolve(filepath.Join(dir, "SCRIPT.EXE"))
	assert.Equal(t, 2, r.Len())
}

func TestResolverEvicts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewResolver(2)
	for _, name := range []string{"a.exe", "b.exe", "c.exe"} {
		r.Resolve(filepath.Join(dir, name))
	}
	assert.Equal(t, 2, r.Len())
}
