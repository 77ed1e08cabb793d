package version

// UpgradeCommand returns the command name to suggest in upgrade notices.
// On Windows a running executable cannot overwrite itself, so the notice
// points at the detached updater binary instead of pkgup.exe.
func UpgradeCommand() string {
	return "pkgup-updater"
}
