// Package registry records, for every library symbol imported by non-test
// code, the shortest qualified path it is reachable under, and checks test
// imports against it.
package registry

import (
	"sort"

	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
)

type Entry struct {
	Path models.QualifiedPath
	// Origin is the file whose import contributed Path.
	Origin string
}

// Registry maps symbol to its minimal known path. Entries only ever shrink:
// a stored path is never longer than any candidate offered before it.
// Ties keep the first candidate, so results depend on offer order; callers
// feed it from a sorted walk.
type Registry struct {
	entries map[string]Entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Candidate is the path a file with module path modulePath offers for rec.
// A module shallower than the import re-exports the symbol as module.symbol.
func Candidate(rec models.ImportRecord, modulePath models.QualifiedPath) models.QualifiedPath {
	if rec.QualifiedPath.Len() <= modulePath.Len()+1 {
		return rec.QualifiedPath
	}
	return modulePath.Append(rec.Symbol)
}

// Offer applies one record of a non-test file and reports whether the
// registry changed.
func (r *Registry) Offer(rec models.ImportRecord, modulePath models.QualifiedPath, origin string) bool {
	candidate := Candidate(rec, modulePath)

	current, exists := r.entries[rec.Symbol]
	if exists && current.Path.Len() <= candidate.Len() {
		return false
	}

	r.entries[rec.Symbol] = Entry{Path: candidate, Origin: origin}
	if exists {
		logger.Debug("Registry: %s shortened %s -> %s (%s)", rec.Symbol, current.Path, candidate, origin)
	} else {
		logger.Debug("Registry: %s -> %s (%s)", rec.Symbol, candidate, origin)
	}
	return true
}

// Add offers every record of one non-test file.
func (r *Registry) Add(records []models.ImportRecord, modulePath models.QualifiedPath, origin string) int {
	changed := 0
	for _, rec := range records {
		if r.Offer(rec, modulePath, origin) {
			changed++
		}
	}
	return changed
}

func (r *Registry) Lookup(symbol string) (Entry, bool) {
	entry, ok := r.entries[symbol]
	return entry, ok
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Symbols returns all registered symbols in lexicographic order.
func (r *Registry) Symbols() []string {
	symbols := make([]string, 0, len(r.entries))
	for s := range r.entries {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
