/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/config"
	"github.com/tristendillon/checklist/core/logger"
)

// errChecksFailed signals a failing report that has already been printed.
var errChecksFailed = errors.New("repository checks failed")

var rootCmd = &cobra.Command{
	Use:   "checklist [root]",
	Short: "Structural checks for a Python library repository.",
	Long: `Checklist audits a Python library tree: package markers, executable
bits, generated Cython artifacts and test imports that bypass the minimal
public import path of a symbol.

Running checklist without a subcommand is the same as "checklist check".`,
	Args:               cobra.MaximumNArgs(1),
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runCheck,
}

var logfile string
var verbose bool
var configPath string

var cfg *config.Config
var logFile *os.File

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			logger.Error("%v", err)
		}
		closeLogFile()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a checklist.yaml (default ./checklist.yaml)")
	addCheckFlags(rootCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verbose)
	if logfile != "" {
		f, err := logger.SetLogFile(logfile)
		if err != nil {
			return err
		}
		logFile = f
	}
	logger.Debug("%s called", cmd.Name())
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	return closeLogFile()
}

// closeLogFile detaches the --logfile tee and closes it.
func closeLogFile() error {
	if logFile == nil {
		return nil
	}
	logger.SetWriterForAll(os.Stderr)
	err := logFile.Close()
	logFile = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies cmd's flag overrides. Only
// commands that walk a library tree need it.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// resolveRoot picks the positional root over the configured one.
func resolveRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Root
}

func requireRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access library root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("library root %s is not a directory", root)
	}
	return nil
}
