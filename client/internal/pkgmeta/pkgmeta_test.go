package pkgmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	recordsDir := t.TempDir()
	require.NoError(t, WriteRecord(recordsDir, Record{
		Name:      "pkgup",
		Version:   "1.2.3",
		Installer: InstallerName,
	}))

	assert.Equal(t, "1.2.3", InstalledVersion(recordsDir, "pkgup"))
	assert.True(t, InstalledByPkgup(recordsDir, "pkgup"))
}

func TestMissingRecord(t *testing.T) {
	recordsDir := t.TempDir()

	assert.Empty(t, InstalledVersion(recordsDir, "pkgup"))
	assert.False(t, InstalledByPkgup(recordsDir, "pkgup"))
}

func TestCorruptRecord(t *testing.T) {
	recordsDir := t.TempDir()
	dir := filepath.Join(recordsDir, "pkgup")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "record.json"), []byte("{broken"), 0o644))

	assert.Empty(t, InstalledVersion(recordsDir, "pkgup"))
	assert.False(t, InstalledByPkgup(recordsDir, "pkgup"))
}

func TestForeignInstaller(t *testing.T) {
	recordsDir := t.TempDir()
	require.NoError(t, WriteRecord(recordsDir, Record{
		Name:      "pkgup",
		Version:   "1.2.3",
		Installer: "apt",
	}))

	assert.Equal(t, "1.2.3", InstalledVersion(recordsDir, "pkgup"))
	assert.False(t, InstalledByPkgup(recordsDir, "pkgup"))
}
