/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/shell"
	"github.com/tristendillon/forge/core/template_engine"
)

var (
	force       bool
	skipInstall bool
)

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Initialize a new Forge docs project",
	Long:  `Creates the boilerplate and necessary files for a new Forge docs project.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := args[0]
		if _, err := os.Stat(dir); err == nil {
			if !force {
				return fmt.Errorf("directory %s already exists, use --force to overwrite", dir)
			}
			logger.Debug("Directory %s already exists. Overwriting.", dir)
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		initData := map[string]string{
			"ProjectName": filepath.Base(abs),
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		engine := template_engine.NewTemplateEngine()
		if err := engine.GenerateFolder(template_engine.TEMPLATES.INIT, dir, initData); err != nil {
			return fmt.Errorf("failed to generate project: %w", err)
		}
		fmt.Printf("Successfully generated project: %s\n", dir)

		failure := false
		if !skipInstall {
			err := logger.Progress("Install dependencies", func() error {
				return shell.Run(cmd.Context(), shell.Options{Dir: abs, Script: "npm install"})
			})
			if err != nil {
				logger.Warn("Failed to install dependencies: %v", err)
				failure = true
			}
		}

		fmt.Printf("Next Steps:\n")
		fmt.Printf("  - cd %s\n", dir)
		if failure || skipInstall {
			fmt.Printf("  - npm install\n")
		}
		fmt.Printf("  - forge docs\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
	initCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Do not run npm install")
}
