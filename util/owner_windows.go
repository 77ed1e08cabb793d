package util

// IsPathOwner always reports true on Windows. There is no uid-based
// ownership model to check against, and the per-user cache location is
// already protected by the profile ACLs.
func IsPathOwner(string) bool {
	return true
}
