package selfcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"github.com/pkgup-io/pkgup/client/internal/index"
	"github.com/pkgup-io/pkgup/client/internal/pkgmeta"
	"github.com/pkgup-io/pkgup/version"
)

// SelfPackage is the package name pkgup tracks for its own releases.
const SelfPackage = "pkgup"

// Options carries everything the self-check needs; nothing is read from
// ambient process state.
type Options struct {
	// CacheDir is where selfcheck.json lives. Empty disables the cache.
	CacheDir string
	// RecordsDir holds pkgup's install records.
	RecordsDir string
	// EnvKey identifies the installation prefix this invocation runs
	// from. Entries of other prefixes sharing the cache are preserved.
	EnvKey string
	// Index configures the candidate finder used when the cached result
	// is stale.
	Index index.Config
}

type candidateFinder interface {
	FindBestCandidate(ctx context.Context, pkg string) (*goversion.Version, error)
}

// checkDeps are the collaborators of a single check run, injectable by
// tests.
type checkDeps struct {
	installedVersion func(recordsDir, pkg string) string
	installedBySelf  func(recordsDir, pkg string) bool
	finder           candidateFinder
	notify           func(format string, args ...interface{})
}

// CheckVersion checks whether a newer pkgup release is available and warns
// the user when an upgrade is worth doing. It is designed to piggy-back on
// normal command invocations: whatever goes wrong, it only ever logs at
// debug level and never disturbs the invocation that hosts it.
func CheckVersion(ctx context.Context, opts Options, now time.Time) {
	deps := checkDeps{
		installedVersion: pkgmeta.InstalledVersion,
		installedBySelf:  pkgmeta.InstalledByPkgup,
		finder:           index.NewFinder(opts.Index),
		notify:           log.Warnf,
	}
	if err := runCheck(ctx, opts, now, deps); err != nil {
		log.Debugf("there was an error checking the latest version of pkgup: %v", err)
	}
}

func runCheck(ctx context.Context, opts Options, now time.Time, deps checkDeps) error {
	installedStr := deps.installedVersion(opts.RecordsDir, SelfPackage)
	if installedStr == "" {
		// not installed through pkgup's records, nothing to compare
		return nil
	}
	installed, err := goversion.NewVersion(installedStr)
	if err != nil {
		return fmt.Errorf("parse installed version %q: %w", installedStr, err)
	}

	state := NewState(opts.CacheDir, opts.EnvKey)

	remote, fresh := state.FreshVersion(now)
	if !fresh {
		candidate, err := deps.finder.FindBestCandidate(ctx, SelfPackage)
		if err != nil {
			return err
		}
		if candidate == nil {
			return nil
		}
		remote = candidate

		// record that a check happened, whether or not we end up
		// notifying
		if err := state.Save(candidate.String(), now); err != nil {
			if !errors.Is(err, ErrNotOwned) {
				return err
			}
			log.Debugf("skipping self-check state save: %v", err)
		}
	}

	if !installed.LessThan(remote) {
		return nil
	}
	if installed.Core().Equal(remote.Core()) {
		// a prerelease or build-metadata bump of the running release is
		// not worth nagging about
		return nil
	}
	if !deps.installedBySelf(opts.RecordsDir, SelfPackage) {
		return nil
	}

	deps.notify("You are using pkgup version %s, however version %s is "+
		"available.\nYou should consider upgrading via the "+
		"'%s install --upgrade pkgup' command.",
		installed, remote, version.UpgradeCommand())
	return nil
}
