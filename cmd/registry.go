/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/ast"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/validator"
	"github.com/tristendillon/checklist/core/walker"
)

var symbols []string

var registryCmd = &cobra.Command{
	Use:   "registry [root]",
	Short: "Print the minimal import path of every library symbol",
	Long: `Builds the minimal-path registry from the library's non-test files and
prints each symbol with its minimal import path and the file that provided it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		root := resolveRoot(args)
		if err := requireRoot(root); err != nil {
			return err
		}

		matcher, err := walker.NewMatcher(cfg.Walk.SkipDirs, cfg.Walk.Exclude)
		if err != nil {
			return err
		}
		v := validator.NewAPIRegressionValidator(cfg, root, walker.NewTreeWalker(matcher), ast.NewParser())
		analysis := v.Analyze(context.Background(), root)
		for _, err := range analysis.Errors {
			logger.Warn("%v", err)
		}

		names := symbols
		if len(names) == 0 {
			names = analysis.Registry.Symbols()
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range names {
			entry, ok := analysis.Registry.Lookup(name)
			if !ok {
				logger.Warn("Symbol %s is not provided by any library file", name)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, entry.Path, entry.Origin)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
	addCheckFlags(registryCmd)
	registryCmd.Flags().StringSliceVar(&symbols, "symbol", nil, "Only print these symbols")
}
