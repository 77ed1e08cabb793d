//go:build unix

package util

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// IsPathOwner reports whether the current user effectively controls path.
// The check walks up to the nearest existing ancestor, so it also answers
// correctly for directories that have not been created yet. A path is
// considered controlled when it is owned by the effective uid, or when it
// is group-writable by one of the process's supplemental groups. Root only
// trusts paths owned by uid 0.
func IsPathOwner(path string) bool {
	previous := ""
	for path != previous {
		var st unix.Stat_t
		if err := unix.Lstat(path, &st); err == nil {
			euid := unix.Geteuid()
			if euid == 0 {
				return st.Uid == 0
			}
			if int(st.Uid) == euid {
				return true
			}
			return groupWritable(&st)
		}
		previous, path = path, filepath.Dir(path)
	}
	return false
}

func groupWritable(st *unix.Stat_t) bool {
	if st.Mode&unix.S_IWGRP == 0 {
		return false
	}

	if int(st.Gid) == unix.Getegid() {
		return true
	}

	groups, err := unix.Getgroups()
	if err != nil {
		return false
	}
	for _, gid := range groups {
		if int(st.Gid) == gid {
			return true
		}
	}
	return false
}
