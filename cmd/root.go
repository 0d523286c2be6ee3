/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/tristendillon/forge/core/config"
	"github.com/tristendillon/forge/core/logger"
	"github.com/tristendillon/forge/core/version"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "A Cli tool for scaffolding and developing React projects.",
	Long: `Forge scaffolds React projects and runs their development modes.
forge docs discovers the documentation pages under docs/ and serves them
with live reload while you edit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if logfile != "" {
			f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", logfile, err)
			}
			logger.AddWriterForAll(f)
		}
		if cfgFile != "" {
			config.SetConfigFileOverride(cfgFile)
		}
		return nil
	},
}

var logfile string
var verbose bool
var cfgFile string

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// loadProject resolves the working directory and its validated config.
func loadProject() (string, *config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.Load(wd)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return wd, cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is ./forge.yaml)")
}
