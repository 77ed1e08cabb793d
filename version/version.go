package version

import goversion "github.com/hashicorp/go-version"

// will be replaced with the release version when using goreleaser
var version = "development"

// PkgupVersion returns the pkgup version
func PkgupVersion() string {
	return version
}

// Semver returns the running version parsed as a semantic version. It
// falls back to 0.0.0 when the build was not stamped with a release
// version.
func Semver() *goversion.Version {
	parsed, err := goversion.NewVersion(version)
	if err != nil {
		parsed, _ = goversion.NewVersion("0.0.0")
	}
	return parsed
}
