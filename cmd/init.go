/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/config"
	"github.com/tristendillon/checklist/core/logger"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [root]",
	Short: "Write a default checklist.yaml",
	Long:  `Writes checklist.yaml with the default settings, optionally for a different library root.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := config.Default()
		if len(args) > 0 {
			out.Root = args[0]
		}
		if err := out.Save(config.FileName, force); err != nil {
			if !force {
				return fmt.Errorf("%w, use --force to overwrite", err)
			}
			return err
		}
		logger.Info("Wrote %s for library root %s", config.FileName, out.Root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
}
