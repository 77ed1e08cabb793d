//go:build !windows

package version

// UpgradeCommand returns the command name to suggest in upgrade notices.
func UpgradeCommand() string {
	return "pkgup"
}
