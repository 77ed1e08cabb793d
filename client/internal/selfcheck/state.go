// Package selfcheck decides, at most once a week, whether a newer pkgup
// release is available and tells the user about it. The result of the last
// remote check is remembered in a state file that may be shared by several
// environments and several concurrent pkgup processes.
package selfcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goversion "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"

	"github.com/pkgup-io/pkgup/client/internal/flock"
	"github.com/pkgup-io/pkgup/util"
)

const (
	stateFileName = "selfcheck.json"

	timeFormat = "2006-01-02T15:04:05Z"

	lockTimeout = 3 * time.Second

	freshnessWindow = 7 * 24 * time.Hour
)

// ErrNotOwned is returned by Save when the cache directory is not
// controlled by the current user. Writing into a directory another user
// pre-created would let them tamper with the state, so the save is
// refused.
var ErrNotOwned = errors.New("state directory not owned by current user")

// overridable in tests
var isPathOwner = util.IsPathOwner

type stateEntry struct {
	LastCheck   string `json:"last_check"`
	PypiVersion string `json:"pypi_version"`
}

// State is the self-check state of a single environment. The on-disk file
// holds one entry per environment key; State only ever reads and replaces
// its own entry.
type State struct {
	envKey        string
	statefilePath string
	entry         stateEntry
}

// NewState loads the state for envKey from cacheDir. An empty cacheDir
// disables persistence: loading yields an empty state and Save becomes a
// no-op. A missing or unreadable state file is treated the same as an
// empty one; the cache is advisory and must never fail the caller.
func NewState(cacheDir, envKey string) *State {
	s := &State{envKey: envKey}

	if cacheDir == "" {
		return s
	}
	s.statefilePath = filepath.Join(cacheDir, stateFileName)

	document := map[string]stateEntry{}
	if _, err := util.ReadJson(s.statefilePath, &document); err != nil {
		log.Debugf("no usable self-check state at %s: %v", s.statefilePath, err)
		return s
	}
	s.entry = document[s.envKey]

	return s
}

// FreshVersion returns the remembered remote version if the last check is
// recent enough to skip a new remote query. A cached version older than
// the freshness window, or one that no longer parses, counts as absent.
func (s *State) FreshVersion(now time.Time) (*goversion.Version, bool) {
	if s.entry.LastCheck == "" || s.entry.PypiVersion == "" {
		return nil, false
	}

	lastCheck, err := time.Parse(timeFormat, s.entry.LastCheck)
	if err != nil {
		return nil, false
	}
	if now.UTC().Sub(lastCheck) >= freshnessWindow {
		return nil, false
	}

	parsed, err := goversion.NewVersion(s.entry.PypiVersion)
	if err != nil {
		log.Debugf("ignoring unparseable cached version %q: %v", s.entry.PypiVersion, err)
		return nil, false
	}
	return parsed, true
}

// Save records pypiVersion and the check time for this environment key,
// preserving the entries of every other key in the file. The
// read-modify-write runs under an exclusive inter-process lock so
// concurrent pkgup invocations cannot clobber each other; lock acquisition
// is bounded by lockTimeout and a timeout is reported as a save failure.
func (s *State) Save(pypiVersion string, now time.Time) error {
	if s.statefilePath == "" {
		return nil
	}

	dir := filepath.Dir(s.statefilePath)
	if !isPathOwner(dir) {
		return ErrNotOwned
	}

	if err := util.EnsureDir(dir); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	lock, err := flock.Lock(ctx, s.statefilePath)
	if err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	defer func() {
		if err := flock.Unlock(lock); err != nil {
			log.Debugf("failed to release state file lock: %v", err)
		}
	}()

	// Re-read under the lock: another process may have written entries
	// for other environment keys since our initial load. Corruption is
	// overwritten rather than kept.
	document := map[string]stateEntry{}
	if bs, err := os.ReadFile(s.statefilePath); err == nil {
		if err := json.Unmarshal(bs, &document); err != nil {
			log.Debugf("discarding corrupt state file %s: %v", s.statefilePath, err)
			document = map[string]stateEntry{}
		}
	}

	document[s.envKey] = stateEntry{
		LastCheck:   now.UTC().Format(timeFormat),
		PypiVersion: pypiVersion,
	}

	// json.Marshal emits map keys sorted and without extra whitespace,
	// so saving identical data yields byte-identical files.
	bs, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(s.statefilePath, bs, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
