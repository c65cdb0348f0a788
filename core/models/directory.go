package models

// Directory is one node of a tree walk: its immediate children, sorted.
type Directory struct {
	Path    string
	RelPath string // slash separated, "." for the walk root
	Dirs    []string
	Files   []string
	// Err is set when the directory could not be listed; Dirs and Files are
	// then empty.
	Err error
}

func (d *Directory) HasFile(name string) bool {
	for _, f := range d.Files {
		if f == name {
			return true
		}
	}
	return false
}
