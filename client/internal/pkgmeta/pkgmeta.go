// Package pkgmeta reads and writes the per-package install records pkgup
// leaves behind under the records directory. A record remembers which
// version of a package is installed and which installer put it there.
package pkgmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/pkgup-io/pkgup/util"
)

const (
	recordFileName = "record.json"

	// InstallerName is the value written to the installer field for
	// packages installed by pkgup itself.
	InstallerName = "pkgup"
)

// Record is the on-disk install record for a single package.
type Record struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Installer string `json:"installer"`
}

func recordPath(recordsDir, pkg string) string {
	return filepath.Join(recordsDir, pkg, recordFileName)
}

func readRecord(recordsDir, pkg string) (*Record, error) {
	bs, err := os.ReadFile(recordPath(recordsDir, pkg))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(bs, &rec); err != nil {
		return nil, fmt.Errorf("parse record for %s: %w", pkg, err)
	}
	return &rec, nil
}

// InstalledVersion returns the installed version of pkg, or an empty
// string when the package has no readable record. It never fails: the
// caller only needs "known version or not".
func InstalledVersion(recordsDir, pkg string) string {
	rec, err := readRecord(recordsDir, pkg)
	if err != nil {
		log.Debugf("no install record for %s: %v", pkg, err)
		return ""
	}
	return rec.Version
}

// InstalledByPkgup reports whether pkg was installed by pkgup itself.
//
// This is used not to display the upgrade message when pkgup was in fact
// installed by a system package manager. A missing or unreadable record
// reports false, never an error.
func InstalledByPkgup(recordsDir, pkg string) bool {
	rec, err := readRecord(recordsDir, pkg)
	if err != nil {
		return false
	}
	return rec.Installer == InstallerName
}

// WriteRecord persists an install record for pkg, creating the package's
// record directory if needed.
func WriteRecord(recordsDir string, rec Record) error {
	dir := filepath.Join(recordsDir, rec.Name)
	if err := util.EnsureDir(dir); err != nil {
		return err
	}

	bs, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal record for %s: %w", rec.Name, err)
	}

	if err := os.WriteFile(filepath.Join(dir, recordFileName), bs, 0o644); err != nil {
		return fmt.Errorf("write record for %s: %w", rec.Name, err)
	}
	return nil
}
