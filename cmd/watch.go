/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/cache"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/validator"
	"github.com/tristendillon/checklist/core/walker"
	"github.com/tristendillon/checklist/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Re-run the checks whenever the library tree changes",
	Long: `Runs every check once, then watches the library tree and runs them again
after each burst of file changes. Parse results of unchanged files are reused
between runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		root := resolveRoot(args)
		if err := requireRoot(root); err != nil {
			return err
		}

		pc, err := cache.NewParseCache(&cache.CacheConfig{MaxEntries: cfg.Cache.MaxEntries})
		if err != nil {
			return err
		}
		validators, err := validator.NewSet(cfg, root, pc)
		if err != nil {
			return err
		}
		matcher, err := walker.NewMatcher(cfg.Walk.SkipDirs, cfg.Walk.Exclude)
		if err != nil {
			return err
		}

		fw, err := watcher.NewFileWatcher(root, matcher, cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer fw.Close()

		var mu sync.Mutex
		run := func() error {
			mu.Lock()
			defer mu.Unlock()

			report, err := validator.Run(root, validators)
			if err != nil {
				return err
			}
			if report.Failed() {
				_, err := report.WriteTo(cmd.ErrOrStderr())
				return err
			}
			logger.Info("All %d checks passed for %s", len(report.Results), root)
			pc.LogStats()
			return nil
		}

		fw.AddOnStartFunc(func() error {
			logger.Info("Watching %s for changes", root)
			return run()
		})
		fw.AddOnChangeFunc(run)
		fw.AddOnInvalidateFunc(pc.InvalidateFile)
		fw.AddOnCloseFunc(func() error {
			logger.Info("Stopped watching %s", root)
			return nil
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addCheckFlags(watchCmd)
}
