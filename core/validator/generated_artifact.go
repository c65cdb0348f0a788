package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tristendillon/checklist/core/models"
	"github.com/tristendillon/checklist/core/walker"
)

const GeneratedArtifactReason = "Cython code missing generated C code"

// GeneratedArtifactValidator flags extension sources whose generated
// artifact is missing from the same directory or empty.
type GeneratedArtifactValidator struct {
	Walker            walker.Walker
	SourceExtension   string
	ArtifactExtension string
}

func (v GeneratedArtifactValidator) Name() string { return "generated-artifact" }

func (v GeneratedArtifactValidator) Validate(root string) (bool, []string) {
	return format(GeneratedArtifactReason, walkEach(v.Walker, root, func(dir *models.Directory) []string {
		var invalid []string
		for _, f := range dir.Files {
			if filepath.Ext(f) != v.SourceExtension {
				continue
			}
			base := strings.TrimSuffix(f, v.SourceExtension)
			sourceFp := filepath.Join(dir.Path, f)

			if !dir.HasFile(base + v.ArtifactExtension) {
				invalid = append(invalid, sourceFp)
				continue
			}

			info, err := os.Stat(filepath.Join(dir.Path, base+v.ArtifactExtension))
			if err != nil {
				invalid = append(invalid, fmt.Sprintf("%s: %v", sourceFp, err))
				continue
			}
			if info.Size() <= 0 {
				invalid = append(invalid, sourceFp)
			}
		}
		return invalid
	}))
}
