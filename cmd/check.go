/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Run every repository check",
	Long: `Runs the init marker, permission, generated artifact and API regression
checks against the library tree and prints each failing check's findings.
Exits non-zero when any check fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}
	root := resolveRoot(args)
	if err := requireRoot(root); err != nil {
		return err
	}

	validators, err := validator.NewSet(cfg, root, nil)
	if err != nil {
		return err
	}

	report, err := validator.Run(root, validators)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", root, err)
	}

	if report.Failed() {
		if _, err := report.WriteTo(cmd.ErrOrStderr()); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return errChecksFailed
	}

	logger.Info("All %d checks passed for %s", len(report.Results), root)
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addCheckFlags(checkCmd)
}
