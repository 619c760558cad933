// Package ignore decides which paths of a source tree are skipped when
// collecting Java sources.
package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultRules are the build and tool directories every walk skips. User
// rules come after them, so a negation can bring one back.
var DefaultRules = []string{
	".git/",
	".serialver/",
	".gradle/",
	".idea/",
	"node_modules/",
	"vendor/",
	"build/",
	"target/",
	"out/",
}

// Matcher applies gitignore rules, the last matching rule wins.
type Matcher struct {
	rules *gitignore.GitIgnore
}

// NewMatcher compiles the default rules followed by .serialverignore lines
// and paths.exclude entries.
func NewMatcher(userRules []string) *Matcher {
	lines := make([]string, 0, len(DefaultRules)+len(userRules))
	lines = append(lines, DefaultRules...)
	lines = append(lines, userRules...)
	return &Matcher{rules: gitignore.CompileIgnoreLines(lines...)}
}

// ShouldIgnore reports whether relPath, relative to the walk root, is
// excluded. Directory-only rules ("build/") match only when isDir is set.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.TrimPrefix(relPath, "./")
	relPath = strings.Trim(relPath, "/")
	if relPath == "" || relPath == "." {
		return false
	}
	if isDir {
		relPath += "/"
	}
	return m.rules.MatchesPath(relPath)
}
