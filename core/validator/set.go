package validator

import (
	"fmt"

	"github.com/tristendillon/checklist/core/ast"
	"github.com/tristendillon/checklist/core/cache"
	"github.com/tristendillon/checklist/core/config"
	"github.com/tristendillon/checklist/core/imports"
	"github.com/tristendillon/checklist/core/walker"
)

// NewSet builds the standard checks for the tree at root. pc may be nil.
func NewSet(cfg *config.Config, root string, pc *cache.ParseCache) ([]Validator, error) {
	matcher, err := walker.NewMatcher(cfg.Walk.SkipDirs, cfg.Walk.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to build walk matcher: %w", err)
	}
	w := walker.NewTreeWalker(matcher)

	var parserOpts []ast.ParserOption
	if pc != nil {
		parserOpts = append(parserOpts, ast.WithCache(pc))
	}

	return []Validator{
		InitValidator{
			Walker: w,
			Marker: cfg.Source.Marker,
		},
		ExecPermissionValidator{
			Walker:     w,
			Extensions: cfg.Permissions.Extensions,
		},
		GeneratedArtifactValidator{
			Walker:            w,
			SourceExtension:   cfg.Generated.SourceExtension,
			ArtifactExtension: cfg.Generated.ArtifactExtension,
		},
		NewAPIRegressionValidator(cfg, root, w, ast.NewParser(parserOpts...)),
	}, nil
}

func NewAPIRegressionValidator(cfg *config.Config, root string, w walker.Walker, parser *ast.Parser) APIRegressionValidator {
	return APIRegressionValidator{
		Walker:          w,
		Parser:          parser,
		Extractor:       imports.NewExtractor(cfg.NamespaceFor(root)),
		SourceExtension: cfg.Source.Extension,
		Marker:          cfg.Source.Marker,
		TestDirs:        cfg.Source.TestDirs,
		MarkersOnly:     cfg.Registry.MarkersOnly,
	}
}
