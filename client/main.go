package main

import (
	"os"

	"github.com/pkgup-io/pkgup/client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
