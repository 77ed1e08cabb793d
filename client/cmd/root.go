package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgup-io/pkgup/client/internal/index"
	"github.com/pkgup-io/pkgup/client/internal/selfcheck"
	"github.com/pkgup-io/pkgup/util"
)

const (
	cacheDirFlag      = "cache-dir"
	recordsDirFlag    = "records-dir"
	indexURLFlag      = "index-url"
	extraIndexURLFlag = "extra-index-url"
	findLinksFlag     = "find-links"
	trustedHostFlag   = "trusted-host"
	selfCheckOffFlag  = "disable-version-check"

	defaultIndexURL = "https://index.pkgup.io"
)

var (
	cacheDir          string
	recordsDir        string
	indexURL          string
	extraIndexURLs    []string
	findLinks         []string
	trustedHosts      []string
	logLevel          string
	logFile           string
	selfCheckDisabled bool

	rootCmd = &cobra.Command{
		Use:          "pkgup",
		Short:        "pkgup queries and installs packages from pkgup indexes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.InitLog(logLevel, logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			runSelfCheck(cmd)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultCacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil {
		defaultCacheDir = filepath.Join(dir, "pkgup")
	}

	rootCmd.PersistentFlags().StringVar(&cacheDir, cacheDirFlag, defaultCacheDir, "Cache directory. An empty string disables caching")
	rootCmd.PersistentFlags().StringVar(&recordsDir, recordsDirFlag, defaultRecordsDir(), "Directory holding pkgup's install records")
	rootCmd.PersistentFlags().StringVarP(&indexURL, indexURLFlag, "i", defaultIndexURL, "Base URL of the package index")
	rootCmd.PersistentFlags().StringSliceVar(&extraIndexURLs, extraIndexURLFlag, nil, "Extra index URLs searched in addition to --index-url")
	rootCmd.PersistentFlags().StringSliceVar(&findLinks, findLinksFlag, nil, "URLs of pages listing package archives")
	rootCmd.PersistentFlags().StringSliceVar(&trustedHosts, trustedHostFlag, nil, "Hosts that may be reached over plain HTTP")
	rootCmd.PersistentFlags().BoolVar(&selfCheckDisabled, selfCheckOffFlag, false, "Don't periodically check whether a newer pkgup is available")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "sets pkgup log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "console", "sets pkgup log path. If console is specified the log will be output to stdout")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(versionCmd)
}

// installPrefix resolves the installation prefix of the running binary:
// the parent of the directory the executable lives in, symlinks resolved.
// It doubles as the environment key of the self-check state, so different
// prefixes sharing one cache directory keep separate entries.
func installPrefix() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe))
}

func defaultRecordsDir() string {
	prefix := installPrefix()
	if prefix == "" {
		return ""
	}
	return filepath.Join(prefix, "share", "pkgup", "installed")
}

func indexConfig() index.Config {
	return index.Config{
		IndexURLs:    append([]string{indexURL}, extraIndexURLs...),
		FindLinks:    findLinks,
		TrustedHosts: trustedHosts,
	}
}

func runSelfCheck(cmd *cobra.Command) {
	if selfCheckDisabled || cmd.Name() == "version" {
		return
	}

	prefix := installPrefix()
	if prefix == "" {
		return
	}

	selfcheck.CheckVersion(cmd.Context(), selfcheck.Options{
		CacheDir:   cacheDir,
		RecordsDir: recordsDir,
		EnvKey:     prefix,
		Index:      indexConfig(),
	}, time.Now())
}
