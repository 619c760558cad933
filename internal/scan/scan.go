// Package scan computes identifiers for every class of a parsed source tree
// that should declare one.
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/suid"
)

// Status classifies the declared identifier of a class against the computed one.
type Status string

const (
	// StatusMissing means the class declares no serialVersionUID.
	StatusMissing Status = "missing"
	// StatusMatch means the declared literal equals the computed default.
	StatusMatch Status = "match"
	// StatusCustom means the declaration differs from the default or is not a literal.
	StatusCustom Status = "custom"
)

// Result is the outcome for one class.
type Result struct {
	File        string `json:"file" yaml:"file"`
	Class       string `json:"class" yaml:"class"`
	Line        int    `json:"line" yaml:"line"`
	Computed    int64  `json:"computed" yaml:"computed"`
	Declared    *int64 `json:"declared,omitempty" yaml:"declared,omitempty"`
	Status      Status `json:"status" yaml:"status"`
	Declaration string `json:"declaration,omitempty" yaml:"declaration,omitempty"`
}

// Run computes results for every class of units that needs an identifier,
// using up to parallel workers. Results are ordered by file, line and class.
func Run(ctx context.Context, units []*javaast.CompilationUnit, engine *suid.Engine, parallel int) ([]Result, error) {
	if parallel < 1 {
		parallel = 1
	}

	var (
		mu      sync.Mutex
		results []Result
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for _, unit := range units {
		if unit == nil {
			continue
		}
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			unitResults, err := Unit(unit, engine)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, unitResults...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	Sort(results)
	return results, nil
}

// Unit computes the results of one compilation unit.
func Unit(unit *javaast.CompilationUnit, engine *suid.Engine) ([]Result, error) {
	dialect, hasDialect := suid.DialectForExtension(filepath.Ext(unit.Path))

	var out []Result
	for _, c := range unit.AllClasses() {
		if !engine.NeedsIdentifier(c) {
			continue
		}
		computed, err := engine.ComputeIdentifier(c)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", unit.Path, err)
		}

		r := Result{
			File:     unit.Path,
			Class:    c.Binary,
			Line:     c.Line,
			Computed: computed,
		}
		switch declared, ok := suid.DeclaredIdentifier(c); {
		case ok:
			r.Declared = &declared
			r.Status = StatusCustom
			if declared == computed {
				r.Status = StatusMatch
			}
		case suid.HasIdentifierField(c):
			r.Status = StatusCustom
		default:
			r.Status = StatusMissing
			if hasDialect {
				r.Declaration, _ = suid.RenderDeclaration(dialect, computed)
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// Sort orders results by file, line and class.
func Sort(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Class < b.Class
	})
}

// Counts tallies results per status.
func Counts(results []Result) map[Status]int {
	counts := map[Status]int{StatusMissing: 0, StatusMatch: 0, StatusCustom: 0}
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// Missing returns the results whose class declares no identifier.
func Missing(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusMissing {
			out = append(out, r)
		}
	}
	return out
}
