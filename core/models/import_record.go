package models

import "strings"

// QualifiedPath is a dotted symbol address, root-most segment first.
type QualifiedPath []string

func ParseQualifiedPath(dotted string) QualifiedPath {
	if dotted == "" {
		return nil
	}
	return QualifiedPath(strings.Split(dotted, "."))
}

func (p QualifiedPath) String() string {
	return strings.Join(p, ".")
}

func (p QualifiedPath) Len() int {
	return len(p)
}

// Last returns the final segment, or "" for an empty path.
func (p QualifiedPath) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p QualifiedPath) Equal(other QualifiedPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Append returns a new path; p is never modified.
func (p QualifiedPath) Append(segments ...string) QualifiedPath {
	out := make(QualifiedPath, 0, len(p)+len(segments))
	out = append(out, p...)
	return append(out, segments...)
}

// ImportRecord is one normalized import of a library symbol.
type ImportRecord struct {
	QualifiedPath QualifiedPath
	Symbol        string
	Line          int
}

func NewImportRecord(path QualifiedPath, line int) ImportRecord {
	return ImportRecord{QualifiedPath: path, Symbol: path.Last(), Line: line}
}

// Violation is a test import that is longer than the symbol's minimal path.
type Violation struct {
	File          string
	UsedImport    QualifiedPath
	MinimalImport QualifiedPath
}

func (v Violation) String() string {
	return v.File + ": " + v.UsedImport.String() + " => " + v.MinimalImport.String()
}
