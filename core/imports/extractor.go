// Package imports turns parsed import statements into fully qualified
// records rooted at the library namespace.
package imports

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/tristendillon/checklist/core/models"
)

var ErrBeyondRoot = errors.New("relative import beyond top-level package")

type Extractor struct {
	Namespace string
}

func NewExtractor(namespace string) *Extractor {
	return &Extractor{Namespace: namespace}
}

// PackagePath maps a slash separated directory, relative to the library
// root, to its package path. The root itself is the namespace.
func (e *Extractor) PackagePath(relDir string) models.QualifiedPath {
	pkg := models.QualifiedPath{e.Namespace}
	relDir = path.Clean(relDir)
	if relDir == "." || relDir == "" {
		return pkg
	}
	return pkg.Append(strings.Split(relDir, "/")...)
}

// ModulePath is the package path a file exposes its names under. The package
// marker contributes no segment; any other module adds its stem.
func ModulePath(dirPackage models.QualifiedPath, fileName, marker string) models.QualifiedPath {
	if fileName == marker {
		return dirPackage
	}
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	return dirPackage.Append(stem)
}

// Extract normalizes the statements of file, whose directory has package path
// dirPackage. Imports outside the namespace are dropped.
func (e *Extractor) Extract(file string, dirPackage models.QualifiedPath, stmts []models.ImportStatement) ([]models.ImportRecord, error) {
	var records []models.ImportRecord

	for _, stmt := range stmts {
		switch stmt.Kind {
		case models.PlainImport:
			for _, name := range stmt.Names {
				records = e.keep(records, models.ParseQualifiedPath(name.Name), stmt.Line)
			}

		case models.FromImport, models.RelativeFromImport:
			if stmt.Wildcard {
				continue
			}
			base, err := e.resolveBase(dirPackage, stmt)
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: %w", file, stmt.Line, err)
			}
			for _, name := range stmt.Names {
				records = e.keep(records, base.Append(models.ParseQualifiedPath(name.Name)...), stmt.Line)
			}

		default:
			return nil, fmt.Errorf("%s: line %d: unknown import kind %v", file, stmt.Line, stmt.Kind)
		}
	}

	return records, nil
}

func (e *Extractor) resolveBase(dirPackage models.QualifiedPath, stmt models.ImportStatement) (models.QualifiedPath, error) {
	module := models.ParseQualifiedPath(stmt.Module)
	if stmt.Kind == models.FromImport || stmt.Level == 0 {
		return module, nil
	}

	up := stmt.Level - 1
	if up >= len(dirPackage) {
		return nil, ErrBeyondRoot
	}
	return dirPackage[:len(dirPackage)-up].Append(module...), nil
}

func (e *Extractor) keep(records []models.ImportRecord, qualified models.QualifiedPath, line int) []models.ImportRecord {
	if len(qualified) == 0 || qualified[0] != e.Namespace {
		return records
	}
	return append(records, models.NewImportRecord(qualified, line))
}
