package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/serialver-dev/serialver/internal/ignore"
	"github.com/serialver-dev/serialver/internal/javaast"
)

// LanguageParser defines the interface each language must implement
type LanguageParser interface {
	// Language returns the language name (e.g., "java")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse builds the declaration model of one source file
	Parse(ctx context.Context, filename string, content []byte) (*javaast.CompilationUnit, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]LanguageParser // language name -> parser
	extToLang map[string]string         // extension -> language name

	// Progress, when set, is called after each file ParseFiles handles.
	Progress func(path string, done int)
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]LanguageParser),
		extToLang: make(map[string]string),
	}
}

// Register adds a language parser to the registry
func (r *Registry) Register(p LanguageParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (LanguageParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile parses a single file. Unsupported file types yield a nil unit.
func (r *Registry) ParseFile(ctx context.Context, path string) (*javaast.CompilationUnit, error) {
	parser, ok := r.GetParserForFile(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	unit, err := parser.Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}

	// Compute file hash for incremental runs
	unit.Hash = HashContent(content)

	return unit, nil
}

// CollectFiles walks root and returns the relative paths of every supported,
// non-ignored file in lexical order.
func (r *Registry) CollectFiles(root string, ignorePaths []string) ([]string, []ParseIssue, error) {
	ignoreMatcher := ignore.NewMatcher(ignorePaths)
	files := make([]string, 0)
	issues := make([]ParseIssue, 0)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			relPath := path
			if rel, relErr := filepath.Rel(root, path); relErr == nil {
				relPath = rel
			}
			issues = append(issues, ParseIssue{
				File:     relPath,
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", err),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories and ignored paths
		relPath, _ := filepath.Rel(root, path)
		if ignoreMatcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		if _, ok := r.GetParserForFile(path); ok {
			files = append(files, filepath.ToSlash(relPath))
		}
		return nil
	})

	sort.Strings(files)
	return files, issues, err
}

// ParseFiles parses relPaths (relative to root) using up to parallel workers.
// Per-file failures become issues; cancellation of ctx is reported in Err and
// leaves the result partial.
func (r *Registry) ParseFiles(ctx context.Context, root string, relPaths []string, parallel int) *ParseResult {
	if parallel < 1 {
		parallel = 1
	}

	result := &ParseResult{
		RootPath: root,
		Units:    make([]*javaast.CompilationUnit, 0, len(relPaths)),
		Issues:   make([]ParseIssue, 0),
	}
	units := make([]*javaast.CompilationUnit, len(relPaths))

	var mu sync.Mutex
	done := 0
	var group errgroup.Group
	group.SetLimit(parallel)

	for i, relPath := range relPaths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			unit, err := r.ParseFile(ctx, filepath.Join(root, filepath.FromSlash(relPath)))
			mu.Lock()
			defer mu.Unlock()
			done++
			if r.Progress != nil {
				r.Progress(relPath, done)
			}
			if err != nil {
				result.Issues = append(result.Issues, ParseIssue{
					File:     relPath,
					Language: r.languageOf(relPath),
					Severity: "error",
					Message:  err.Error(),
				})
				return nil
			}
			if unit == nil {
				return nil
			}
			unit.Path = relPath
			if unit.HasError {
				result.Issues = append(result.Issues, ParseIssue{
					File:     relPath,
					Language: r.languageOf(relPath),
					Severity: "warning",
					Message:  "syntax errors present, declarations may be incomplete",
				})
			}
			units[i] = unit
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		result.Err = err
	} else {
		// tree-sitter reports a cancelled parse as a per-file issue
		result.Err = ctx.Err()
	}

	for _, unit := range units {
		if unit != nil {
			result.Units = append(result.Units, unit)
		}
	}
	sortIssues(result.Issues)
	return result
}

// ParseDirectory recursively parses all supported files in a directory
func (r *Registry) ParseDirectory(ctx context.Context, root string, ignorePaths []string, parallel int) (*ParseResult, error) {
	files, issues, err := r.CollectFiles(root, ignorePaths)
	result := r.ParseFiles(ctx, root, files, parallel)
	result.Issues = append(result.Issues, issues...)
	sortIssues(result.Issues)
	if err == nil {
		err = result.Err
	}
	return result, err
}

func (r *Registry) languageOf(path string) string {
	if p, ok := r.GetParserForFile(path); ok {
		return p.Language()
	}
	return ""
}

func sortIssues(issues []ParseIssue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File == issues[j].File {
			return issues[i].Message < issues[j].Message
		}
		return issues[i].File < issues[j].File
	})
}

// HashContent returns the short content hash used for incremental runs.
func HashContent(content []byte) string {
	h := sha256.New()
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:16] // short hash
}
