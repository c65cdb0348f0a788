package validator

import (
	"path"

	"github.com/tristendillon/checklist/core/models"
	"github.com/tristendillon/checklist/core/walker"
)

const InitReason = "Directories missing init files"

// InitValidator flags library directories without a package marker. Such a
// test directory is silently skipped by test runners once the package is
// installed. Directories whose whole subtree holds no files are not library
// code and are never flagged.
type InitValidator struct {
	Walker walker.Walker
	Marker string
}

func (v InitValidator) Name() string { return "init" }

func (v InitValidator) Validate(root string) (bool, []string) {
	type candidate struct {
		relPath string
		item    string
	}

	var candidates []candidate
	hasFiles := map[string]bool{}

	err := v.Walker.Walk(root, func(dir *models.Directory) error {
		if dir.Err != nil {
			// Unreadable directories are always reported.
			candidates = append(candidates, candidate{item: dir.Err.Error()})
			return nil
		}
		if len(dir.Files) > 0 {
			for rel := dir.RelPath; !hasFiles[rel]; rel = path.Dir(rel) {
				hasFiles[rel] = true
				if rel == "." {
					break
				}
			}
		}
		if !dir.HasFile(v.Marker) {
			candidates = append(candidates, candidate{relPath: dir.RelPath, item: dir.Path})
		}
		return nil
	})

	var invalids []string
	for _, c := range candidates {
		if c.relPath == "" || hasFiles[c.relPath] {
			invalids = append(invalids, c.item)
		}
	}
	if err != nil {
		invalids = append(invalids, err.Error())
	}
	return format(InitReason, invalids)
}
