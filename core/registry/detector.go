package registry

import (
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
)

// Detector compares test imports against a fully built Registry. It never
// modifies the registry.
type Detector struct {
	registry *Registry
}

func NewDetector(r *Registry) *Detector {
	return &Detector{registry: r}
}

// Detect returns a violation for every record of file that is longer than
// its symbol's minimal path.
func (d *Detector) Detect(file string, records []models.ImportRecord) []models.Violation {
	var violations []models.Violation

	for _, rec := range records {
		entry, ok := d.registry.Lookup(rec.Symbol)
		if !ok {
			continue
		}

		used, minimal := rec.QualifiedPath.Len(), entry.Path.Len()
		switch {
		case used > minimal:
			violations = append(violations, models.Violation{
				File:          file,
				UsedImport:    rec.QualifiedPath,
				MinimalImport: entry.Path,
			})
		case used == minimal:
			if !rec.QualifiedPath.Equal(entry.Path) {
				logger.Debug("%s: %s and %s are equally short aliases", file, rec.QualifiedPath, entry.Path)
			}
		default:
			// Tests can reach a symbol more directly than any library file
			// imports it; not a regression, but the registry is incomplete.
			logger.Warn("%s: %s is shorter than registered minimal import %s (from %s)",
				file, rec.QualifiedPath, entry.Path, entry.Origin)
		}
	}

	return violations
}
