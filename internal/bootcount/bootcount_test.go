package bootcount

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsFirstBoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootcount")

	count, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.True(t, IsFirstBoot(count))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(data))
}

func TestLoadIncrementsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootcount")

	first, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, first)

	second, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, second)
	assert.False(t, IsFirstBoot(second))

	third, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, third)
}

func TestLoadRejectsCorruptContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootcount")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bootcount")
	require.NoError(t, os.WriteFile(path, []byte("  7  \n"), 0o644))

	count, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
