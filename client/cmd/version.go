package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pkgup-io/pkgup/version"
)

var (
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "prints pkgup version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.PkgupVersion())
		},
	}
)
