package main

import (
	"github.com/spf13/cobra"

	"reqmap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "reqmap",
	Short: "reqmap - requirement-to-code mapping",
	Long: `reqmap maps ticket-style requirements onto the files of a codebase.

It extracts keywords from a requirement, scores them against a
pre-built code index, produces a ranked change proposal for review,
and applies confirmed suggested changes to the working tree.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("reqmap version {{.Version}}\n")
}
