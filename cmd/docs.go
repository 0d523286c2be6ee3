package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/serve"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Serve the project documentation in development mode",
	Long: `Lints the project, generates the docs entry from every page under the
docs directory, prebuilds the vendor bundle and serves everything with live
reload. Adding or removing a page regenerates the entry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("docs called")
		wd, cfg, err := loadProject()
		if err != nil {
			return err
		}

		return serve.New(wd, cfg).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
