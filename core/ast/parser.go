package ast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/tristendillon/checklist/core/cache"
	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
)

var ErrInvalidContent = errors.New("content is not valid UTF-8")

// ParseError locates the first syntax error of a source file.
type ParseError struct {
	File   string
	Line   int
	Column int
	Near   string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: syntax error at line %d, column %d", e.File, e.Line, e.Column)
	if e.Near != "" {
		msg += fmt.Sprintf(" near %q", e.Near)
	}
	return msg
}

type ParserOption func(*Parser)

// WithCache reuses parse results for files whose content has not changed.
func WithCache(c *cache.ParseCache) ParserOption {
	return func(p *Parser) {
		p.cache = c
	}
}

// Parser extracts the module-level import statements of Python files.
// Each call creates its own tree-sitter parser, so a Parser may be shared.
type Parser struct {
	cache *cache.ParseCache
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) ParseFile(ctx context.Context, path string) (*models.ParsedFile, error) {
	if p.cache != nil {
		if parsed, ok := p.cache.ValidateAndGet(path); ok {
			return parsed, nil
		}
	}

	// Stat before reading so a cached entry never pairs old content with a newer mtime.
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	parsed, err := p.Parse(ctx, src, path)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(path, src, info, parsed); err != nil {
			logger.Debug("Could not cache %s: %v", path, err)
		}
	}
	return parsed, nil
}

// Parse returns the top-level imports of content. Syntax errors anywhere in
// the file fail the whole file with a *ParseError.
func (p *Parser) Parse(ctx context.Context, content []byte, path string) (*models.ParsedFile, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse %s: empty syntax tree", path)
	}
	if root.HasError() {
		return nil, newParseError(path, firstError(root), content)
	}

	parsed := &models.ParsedFile{Path: path}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			parsed.Statements = append(parsed.Statements, plainImport(child, content))
		case "import_from_statement":
			parsed.Statements = append(parsed.Statements, fromImport(child, content))
		}
	}

	logger.Debug("Parsed %s: %d top-level imports", path, len(parsed.Statements))
	return parsed, nil
}

func text(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// import a.b.c, d as e
func plainImport(node *sitter.Node, content []byte) models.ImportStatement {
	stmt := models.ImportStatement{Kind: models.PlainImport, Line: line(node)}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			stmt.Names = append(stmt.Names, models.ImportedName{Name: text(child, content)})
		case "aliased_import":
			stmt.Names = append(stmt.Names, aliased(child, content))
		}
	}
	return stmt
}

// from a.b import c, d as e / from ..a import (b, c) / from . import *
func fromImport(node *sitter.Node, content []byte) models.ImportStatement {
	stmt := models.ImportStatement{Kind: models.FromImport, Line: line(node)}
	sawImport := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			stmt.Kind = models.RelativeFromImport
			for j := 0; j < int(child.ChildCount()); j++ {
				part := child.Child(j)
				switch part.Type() {
				case "import_prefix":
					stmt.Level = strings.Count(text(part, content), ".")
				case "dotted_name":
					stmt.Module = text(part, content)
				}
			}
		case "dotted_name":
			if !sawImport {
				stmt.Module = text(child, content)
			} else {
				stmt.Names = append(stmt.Names, models.ImportedName{Name: text(child, content)})
			}
		case "identifier":
			if sawImport {
				stmt.Names = append(stmt.Names, models.ImportedName{Name: text(child, content)})
			}
		case "aliased_import":
			stmt.Names = append(stmt.Names, aliased(child, content))
		case "wildcard_import":
			stmt.Wildcard = true
		}
	}
	return stmt
}

func aliased(node *sitter.Node, content []byte) models.ImportedName {
	var name models.ImportedName
	if n := node.ChildByFieldName("name"); n != nil {
		name.Name = text(n, content)
	}
	if a := node.ChildByFieldName("alias"); a != nil {
		name.Alias = text(a, content)
	}
	return name
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

func newParseError(path string, node *sitter.Node, content []byte) *ParseError {
	if node == nil {
		return &ParseError{File: path, Line: 1, Column: 1}
	}

	near := strings.TrimSpace(text(node, content))
	if idx := strings.IndexByte(near, '\n'); idx >= 0 {
		near = near[:idx]
	}
	if len(near) > 40 {
		near = near[:40] + "..."
	}

	return &ParseError{
		File:   path,
		Line:   line(node),
		Column: int(node.StartPoint().Column) + 1,
		Near:   near,
	}
}
