package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pkgup-io/pkgup/client/internal/index"
)

var (
	searchPrereleases bool

	searchCmd = &cobra.Command{
		Use:   "search <package>",
		Short: "looks up the latest published version of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := indexConfig()
			cfg.AllowPrereleases = searchPrereleases

			best, err := index.NewFinder(cfg).FindBestCandidate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if best == nil {
				cmd.Printf("no candidates found for %s\n", args[0])
				return nil
			}
			cmd.Printf("%s %s\n", args[0], best)
			return nil
		},
	}
)

func init() {
	searchCmd.Flags().BoolVar(&searchPrereleases, "pre", false, "include prerelease candidates")
}
