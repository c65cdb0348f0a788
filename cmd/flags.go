package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tristendillon/checklist/core/config"
)

var (
	namespace   string
	skipDirs    []string
	excludes    []string
	testDirs    []string
	markersOnly bool
)

// addCheckFlags registers the config overrides shared by every command that
// walks a library tree.
func addCheckFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&namespace, "namespace", "", "Library namespace (default: base name of root)")
	flags.StringSliceVar(&skipDirs, "skip-dir", nil, "Directory names to skip, replaces walk.skip_dirs")
	flags.StringSliceVar(&excludes, "exclude", nil, "Glob patterns to exclude, added to walk.exclude")
	flags.StringSliceVar(&testDirs, "test-dir", nil, "Test directory names, replaces source.test_dirs")
	flags.BoolVar(&markersOnly, "markers-only", false, "Only package markers contribute to the import registry")
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("namespace") {
		cfg.Namespace = namespace
	}
	if flags.Changed("skip-dir") {
		cfg.Walk.SkipDirs = skipDirs
	}
	if flags.Changed("exclude") {
		cfg.Walk.Exclude = append(cfg.Walk.Exclude, excludes...)
	}
	if flags.Changed("test-dir") {
		cfg.Source.TestDirs = testDirs
	}
	if flags.Changed("markers-only") {
		cfg.Registry.MarkersOnly = markersOnly
	}
	return cfg.Validate()
}
