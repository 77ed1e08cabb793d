package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// idempotent
	require.NoError(t, EnsureDir(dir))
}

func TestReadJson(t *testing.T) {
	file := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"key":"value"}`), 0o644))

	doc := map[string]string{}
	_, err := ReadJson(file, &doc)
	require.NoError(t, err)
	assert.Equal(t, "value", doc["key"])

	_, err = ReadJson(filepath.Join(t.TempDir(), "missing.json"), &doc)
	assert.Error(t, err)
}

func TestIsPathOwner(t *testing.T) {
	// the test's own temp dir is always controlled by the test user
	assert.True(t, IsPathOwner(t.TempDir()))

	// not-yet-existing children of a controlled dir are controlled too
	assert.True(t, IsPathOwner(filepath.Join(t.TempDir(), "not", "created", "yet")))
}
