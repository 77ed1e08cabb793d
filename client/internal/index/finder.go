// Package index queries package indexes for published versions. A Finder
// fans out over the configured index URLs and find-links pages, filters the
// discovered versions and returns the best remaining candidate.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	goversion "github.com/hashicorp/go-version"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"github.com/pkgup-io/pkgup/version"
)

const (
	userAgent = "pkgup/%s"

	requestTimeout = 10 * time.Second

	// candidate results are reused within a process run so several
	// commands consulting the index cost a single network round per
	// package
	resultTTL = 5 * time.Minute

	maxResponseSize = 1 << 20 // 1 MiB
)

// archivePattern matches "name-1.2.3.tar.gz" style links on a find-links
// page.
var archivePattern = regexp.MustCompile(`([A-Za-z0-9_.\-]+)-([0-9][A-Za-z0-9.\-+]*)\.tar\.gz`)

// Config carries the index sources a Finder consults.
type Config struct {
	IndexURLs        []string
	FindLinks        []string
	TrustedHosts     []string
	AllowPrereleases bool
}

// Finder resolves the best published version of a package across the
// configured sources.
type Finder struct {
	config Config
	client *http.Client
	cache  *gocache.Cache
}

// NewFinder creates a Finder for the given sources.
func NewFinder(config Config) *Finder {
	return &Finder{
		config: config,
		client: &http.Client{Timeout: requestTimeout},
		cache:  gocache.New(resultTTL, 2*resultTTL),
	}
}

// WithHTTPClient overrides the HTTP client, used by tests.
func (f *Finder) WithHTTPClient(client *http.Client) *Finder {
	f.client = client
	return f
}

// FindBestCandidate returns the highest published version of pkg across
// all configured sources, or nil when no source has a matching candidate.
// Individual source failures are collected; they surface as an error only
// when no source produced a candidate at all.
func (f *Finder) FindBestCandidate(ctx context.Context, pkg string) (*goversion.Version, error) {
	if cached, ok := f.cache.Get(pkg); ok {
		return cached.(*goversion.Version), nil
	}

	var candidates []*goversion.Version
	var errs *multierror.Error

	for _, indexURL := range f.config.IndexURLs {
		versions, err := f.fetchIndex(ctx, indexURL, pkg)
		if err != nil {
			log.Debugf("index %s: %v", indexURL, err)
			errs = multierror.Append(errs, err)
			continue
		}
		candidates = append(candidates, f.filter(versions)...)
	}

	for _, pageURL := range f.config.FindLinks {
		versions, err := f.fetchFindLinks(ctx, pageURL, pkg)
		if err != nil {
			log.Debugf("find-links %s: %v", pageURL, err)
			errs = multierror.Append(errs, err)
			continue
		}
		candidates = append(candidates, f.filter(versions)...)
	}

	best := bestOf(candidates)
	if best == nil {
		if err := errs.ErrorOrNil(); err != nil {
			return nil, fmt.Errorf("find candidates for %s: %w", pkg, err)
		}
		return nil, nil
	}

	f.cache.Set(pkg, best, gocache.DefaultExpiration)
	return best, nil
}

// indexResponse is the JSON document served at <index>/<pkg>/index.json.
type indexResponse struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

func (f *Finder) fetchIndex(ctx context.Context, indexURL, pkg string) ([]string, error) {
	target, err := url.JoinPath(indexURL, pkg, "index.json")
	if err != nil {
		return nil, fmt.Errorf("build index url: %w", err)
	}

	body, err := f.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var resp indexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode index response: %w", err)
	}
	return resp.Versions, nil
}

func (f *Finder) fetchFindLinks(ctx context.Context, pageURL, pkg string) ([]string, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, m := range archivePattern.FindAllStringSubmatch(string(body), -1) {
		if m[1] != pkg {
			continue
		}
		versions = append(versions, m[2])
	}
	return versions, nil
}

func (f *Finder) get(ctx context.Context, target string) ([]byte, error) {
	if err := f.checkScheme(target); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf(userAgent, version.PkgupVersion()))
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warnf("error closing response body for %s: %v", target, cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", target, err)
	}
	return body, nil
}

// checkScheme refuses plain HTTP sources unless their host was explicitly
// trusted.
func (f *Finder) checkScheme(target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url %s: %w", target, err)
	}
	if parsed.Scheme != "http" {
		return nil
	}
	for _, host := range f.config.TrustedHosts {
		if strings.EqualFold(host, parsed.Hostname()) {
			return nil
		}
	}
	return fmt.Errorf("refusing insecure source %s: host not trusted", target)
}

func (f *Finder) filter(raw []string) []*goversion.Version {
	var out []*goversion.Version
	for _, s := range raw {
		parsed, err := goversion.NewVersion(s)
		if err != nil {
			log.Debugf("skipping unparseable version %q: %v", s, err)
			continue
		}
		if !f.config.AllowPrereleases && parsed.Prerelease() != "" {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func bestOf(candidates []*goversion.Version) *goversion.Version {
	var best *goversion.Version
	for _, c := range candidates {
		if best == nil || c.GreaterThan(best) {
			best = c
		}
	}
	return best
}
