// Package validator holds the repository checks and the driver that runs them.
package validator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tristendillon/checklist/core/logger"
	"github.com/tristendillon/checklist/core/models"
	"github.com/tristendillon/checklist/core/walker"
)

// Validator is one independent check over a directory tree. Validate returns
// false iff something was flagged; lines then start with the check's reason,
// followed by one indented line per flagged item.
type Validator interface {
	Name() string
	Validate(root string) (bool, []string)
}

const indent = "    "

// format builds the report lines of a check from its flagged items.
func format(reason string, invalids []string) (bool, []string) {
	if len(invalids) == 0 {
		return true, nil
	}
	lines := make([]string, 0, len(invalids)+1)
	lines = append(lines, reason+":")
	for _, invalid := range invalids {
		lines = append(lines, indent+invalid)
	}
	return false, lines
}

// walkEach applies check to every directory below root and collects what it
// flags. A walk that cannot start is itself flagged.
func walkEach(w walker.Walker, root string, check func(dir *models.Directory) []string) []string {
	var invalids []string
	err := w.Walk(root, func(dir *models.Directory) error {
		if dir.Err != nil {
			invalids = append(invalids, dir.Err.Error())
			return nil
		}
		invalids = append(invalids, check(dir)...)
		return nil
	})
	if err != nil {
		invalids = append(invalids, err.Error())
	}
	return invalids
}

type Result struct {
	Name    string
	Success bool
	Lines   []string
}

type Report struct {
	Results []Result
}

// Run executes every validator against root, regardless of earlier failures.
// Only an unusable root is an error.
func Run(root string, validators []Validator) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	report := &Report{}
	for _, v := range validators {
		success, lines := v.Validate(root)
		if success {
			logger.Debug("Check %s passed", v.Name())
		} else {
			logger.Debug("Check %s flagged %d items", v.Name(), len(lines)-1)
		}
		report.Results = append(report.Results, Result{Name: v.Name(), Success: success, Lines: lines})
	}
	return report, nil
}

func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Success {
			return true
		}
	}
	return false
}

func (r *Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// String renders failing checks, each group followed by a blank line.
func (r *Report) String() string {
	var sb strings.Builder
	for _, res := range r.Results {
		if res.Success {
			continue
		}
		sb.WriteString(strings.Join(res.Lines, "\n"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
