package validator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tristendillon/checklist/core/models"
	"github.com/tristendillon/checklist/core/walker"
)

const ExecPermissionReason = "Library code with execute permissions"

// ExecPermissionValidator flags code files carrying any execute bit.
type ExecPermissionValidator struct {
	Walker     walker.Walker
	Extensions []string
}

func (v ExecPermissionValidator) Name() string { return "exec-permission" }

func (v ExecPermissionValidator) Validate(root string) (bool, []string) {
	exts := make(map[string]bool, len(v.Extensions))
	for _, ext := range v.Extensions {
		exts[ext] = true
	}

	return format(ExecPermissionReason, walkEach(v.Walker, root, func(dir *models.Directory) []string {
		var invalid []string
		for _, f := range dir.Files {
			if !exts[filepath.Ext(f)] {
				continue
			}
			fp := filepath.Join(dir.Path, f)
			info, err := os.Stat(fp)
			if err != nil {
				invalid = append(invalid, fmt.Sprintf("%s: %v", fp, err))
				continue
			}
			if info.Mode().Perm()&0o111 != 0 {
				invalid = append(invalid, fp)
			}
		}
		return invalid
	}))
}
