package validator

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/tristendillon/checklist/core/ast"
	"github.com/tristendillon/checklist/core/imports"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
	"github.com/tristendillon/checklist/core/registry"
	"github.com/tristendillon/checklist/core/walker"
)

const APIRegressionReason = "The following tests import `A` but should import `B` (file: A => B)"

// APIRegressionValidator flags test imports that do not use the shortest
// path under which library code exposes a symbol. Tests then break whenever
// a public alias is removed, which is the regression this guards against.
type APIRegressionValidator struct {
	Walker          walker.Walker
	Parser          *ast.Parser
	Extractor       *imports.Extractor
	SourceExtension string
	Marker          string
	TestDirs        []string
	// MarkersOnly limits registry contributions to package marker files.
	MarkersOnly bool
}

// Analysis is the outcome of one build-then-check pass over a tree.
type Analysis struct {
	Registry   *registry.Registry
	Violations []models.Violation
	// Errors holds files that could not be read, parsed or resolved.
	Errors []error
}

type testImports struct {
	path    string
	records []models.ImportRecord
}

func (v APIRegressionValidator) Name() string { return "api-regression" }

func (v APIRegressionValidator) Validate(root string) (bool, []string) {
	analysis := v.Analyze(context.Background(), root)

	invalids := make([]string, 0, len(analysis.Violations)+len(analysis.Errors))
	for _, violation := range analysis.Violations {
		invalids = append(invalids, violation.String())
	}
	for _, err := range analysis.Errors {
		invalids = append(invalids, err.Error())
	}
	return format(APIRegressionReason, invalids)
}

// Analyze builds the registry from every non-test file of the tree before
// checking any test file; the registry is only minimal once complete.
func (v APIRegressionValidator) Analyze(ctx context.Context, root string) *Analysis {
	analysis := &Analysis{Registry: registry.New()}
	var tests []testImports

	err := v.Walker.Walk(root, func(dir *models.Directory) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if dir.Err != nil {
			analysis.Errors = append(analysis.Errors, dir.Err)
			return nil
		}

		dirPackage := v.Extractor.PackagePath(dir.RelPath)
		isTest := v.isTestDir(dir.RelPath)

		for _, f := range dir.Files {
			if filepath.Ext(f) != v.SourceExtension {
				continue
			}
			fp := filepath.Join(dir.Path, f)

			records, err := v.extract(ctx, fp, dirPackage)
			if err != nil {
				logger.Debug("Skipping %s: %v", fp, err)
				analysis.Errors = append(analysis.Errors, err)
				continue
			}

			if isTest {
				tests = append(tests, testImports{path: fp, records: records})
				continue
			}
			if v.MarkersOnly && f != v.Marker {
				continue
			}
			analysis.Registry.Add(records, imports.ModulePath(dirPackage, f, v.Marker), fp)
		}
		return nil
	})
	if err != nil {
		analysis.Errors = append(analysis.Errors, err)
	}

	logger.Debug("Registry built: %d symbols, %d test files to check", analysis.Registry.Len(), len(tests))

	detector := registry.NewDetector(analysis.Registry)
	for _, t := range tests {
		analysis.Violations = append(analysis.Violations, detector.Detect(t.path, t.records)...)
	}
	return analysis
}

func (v APIRegressionValidator) extract(ctx context.Context, fp string, dirPackage models.QualifiedPath) ([]models.ImportRecord, error) {
	parsed, err := v.Parser.ParseFile(ctx, fp)
	if err != nil {
		return nil, err
	}
	return v.Extractor.Extract(fp, dirPackage, parsed.Statements)
}

// isTestDir reports whether any segment of relDir names a test directory.
func (v APIRegressionValidator) isTestDir(relDir string) bool {
	for _, segment := range strings.Split(relDir, "/") {
		for _, name := range v.TestDirs {
			if segment == name {
				return true
			}
		}
	}
	return false
}
