/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/forge/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of Forge",
	Long:  `Displays the version of Forge.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Forge %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
