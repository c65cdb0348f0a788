package walker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
)

// ErrStop ends a walk early without reporting an error.
var ErrStop = errors.New("stop walk")

type VisitFunc func(dir *models.Directory) error

type Walker interface {
	Walk(root string, visit VisitFunc) error
}

// TreeWalker visits directories top-down. Subdirectories and files are sorted
// lexicographically, so every walk of an unchanged tree has the same order.
type TreeWalker struct {
	Matcher *Matcher
}

func NewTreeWalker(matcher *Matcher) *TreeWalker {
	if matcher == nil {
		matcher = &Matcher{names: map[string]bool{}}
	}
	return &TreeWalker{Matcher: matcher}
}

// Walk fails only when root itself is unusable or visit returns an error.
// Unreadable subdirectories are passed to visit with Err set.
func (w *TreeWalker) Walk(root string, visit VisitFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	err = w.walkDir(root, ".", visit)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func (w *TreeWalker) walkDir(dirPath, relPath string, visit VisitFunc) error {
	dir := &models.Directory{Path: dirPath, RelPath: relPath}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if relPath == "." {
			return fmt.Errorf("failed to read root %s: %w", dirPath, err)
		}
		logger.Debug("Could not read directory %s: %v", dirPath, err)
		dir.Err = fmt.Errorf("failed to read directory %s: %w", dirPath, err)
		return visit(dir)
	}

	// os.ReadDir returns entries sorted by name.
	for _, entry := range entries {
		if entry.IsDir() {
			childRel := path.Join(relPath, entry.Name())
			if w.Matcher.Skip(childRel) {
				logger.Debug("Excluding directory: %s", childRel)
				continue
			}
			dir.Dirs = append(dir.Dirs, entry.Name())
		} else {
			dir.Files = append(dir.Files, entry.Name())
		}
	}

	if err := visit(dir); err != nil {
		return err
	}

	for _, name := range dir.Dirs {
		if err := w.walkDir(filepath.Join(dirPath, name), path.Join(relPath, name), visit); err != nil {
			return err
		}
	}
	return nil
}
