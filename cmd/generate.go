/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/forge/core/docs"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/models"
	"github.com/tristendillon/forge/core/project"
	"github.com/tristendillon/forge/core/serve"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates the docs entry for the project",
	Long:  `Runs one analysis pass and writes the docs entry without starting the server.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("generate called")
		wd, cfg, err := loadProject()
		if err != nil {
			return err
		}

		if err := project.New(wd, cfg).EnsureProjectFiles(); err != nil {
			return fmt.Errorf("failed to prepare project: %w", err)
		}

		results, err := serve.NewAnalyzer(wd, cfg).Analyse(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to generate docs entry: %w", err)
		}

		res, _ := results[docs.HookName].(models.AnalysisResult)
		logger.Info("Generated %s with %d doc files", cfg.EntryPath(wd), len(res.Docs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
