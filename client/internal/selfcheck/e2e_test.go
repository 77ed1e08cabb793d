package selfcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkgup-io/pkgup/client/internal/index"
	"github.com/pkgup-io/pkgup/client/internal/pkgmeta"
)

// full pass through the real collaborators: install records on disk, a
// live index fixture and the state file, with only the notice captured.
func TestSelfCheck_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pkgup/index.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"pkgup","versions":["1.0.0","1.1.0"]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvHost, _ := url.Parse(srv.URL)

	cacheDir := t.TempDir()
	recordsDir := t.TempDir()
	require.NoError(t, pkgmeta.WriteRecord(recordsDir, pkgmeta.Record{
		Name:      SelfPackage,
		Version:   "1.0.0",
		Installer: pkgmeta.InstallerName,
	}))

	opts := Options{
		CacheDir:   cacheDir,
		RecordsDir: recordsDir,
		EnvKey:     "/opt/pkgup",
		Index: index.Config{
			IndexURLs:    []string{srv.URL},
			TrustedHosts: []string{srvHost.Hostname()},
		},
	}

	rec := &notifyRecorder{}
	deps := checkDeps{
		installedVersion: pkgmeta.InstalledVersion,
		installedBySelf:  pkgmeta.InstalledByPkgup,
		finder:           index.NewFinder(opts.Index),
		notify:           rec.notify,
	}

	require.NoError(t, runCheck(context.Background(), opts, testTime, deps))

	document := readDocument(t, filepath.Join(cacheDir, stateFileName))
	require.Len(t, document, 1)
	assert.Equal(t, "1.1.0", document["/opt/pkgup"].PypiVersion)
	assert.Equal(t, "2024-05-01T12:00:00Z", document["/opt/pkgup"].LastCheck)

	require.Len(t, rec.messages, 1)
	assert.Contains(t, rec.messages[0], "1.0.0")
	assert.Contains(t, rec.messages[0], "1.1.0")
	if runtime.GOOS == "windows" {
		assert.Contains(t, rec.messages[0], "pkgup-updater install --upgrade pkgup")
	} else {
		assert.Contains(t, rec.messages[0], "'pkgup install --upgrade pkgup'")
	}
}
