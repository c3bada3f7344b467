package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hetdex-collaboration/gohetdex/pkg/gohetdex"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hetdex v" + gohetdex.Version)
	},
}
