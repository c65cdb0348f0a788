package models

type ImportKind int

const (
	PlainImport ImportKind = iota
	FromImport
	RelativeFromImport
)

func (k ImportKind) String() string {
	switch k {
	case PlainImport:
		return "import"
	case FromImport:
		return "from"
	case RelativeFromImport:
		return "relative-from"
	default:
		return "unknown"
	}
}

type ImportedName struct {
	Name  string // dotted for plain imports
	Alias string
}

// ImportStatement is one module-level import, independent of the grammar
// that produced it.
type ImportStatement struct {
	Kind     ImportKind
	Module   string // from-imports only; empty for "from . import x"
	Level    int    // leading dots of a relative import
	Names    []ImportedName
	Wildcard bool
	Line     int
}

type ParsedFile struct {
	Path       string
	Statements []ImportStatement
}
