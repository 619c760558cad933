package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/serialver-dev/serialver/internal/fileutil"
	"github.com/serialver-dev/serialver/internal/parser"
	"github.com/serialver-dev/serialver/internal/state"
)

func IsCorruptStateError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

// ReportParseIssues prints issues as "[severity] file: message" and logs them.
func ReportParseIssues(w io.Writer, logger *slog.Logger, issues []parser.ParseIssue) {
	for _, issue := range issues {
		logger.Warn("parse issue", "file", issue.File, "severity", issue.Severity, "message", issue.Message)
		if issue.Language != "" {
			fmt.Fprintf(w, "[%s] %s (%s): %s\n", issue.Severity, issue.File, issue.Language, issue.Message)
			continue
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", issue.Severity, issue.File, issue.Message)
	}
}

// cacheDir resolves cache.dir against rootPath.
func (a *App) cacheDir(rootPath string) string {
	dir := a.cfg.GetString(cacheDirConfigKey)
	if dir == "" {
		dir = defaultCacheDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(rootPath, dir)
}

// loadState loads the cache, treating a corrupt file as empty.
func (a *App) loadState(cacheDir string, stderr io.Writer) (*state.State, error) {
	st, err := state.Load(cacheDir)
	if err == nil {
		return st, nil
	}
	if IsCorruptStateError(err) {
		fmt.Fprintf(stderr, "warning: corrupt state file detected (%v); treating all files as changed\n", err)
		a.logger.Warn("corrupt state file", "dir", cacheDir, "error", err)
		return state.NewState(), nil
	}
	return nil, fmt.Errorf("failed to load state: %w", err)
}

// ignoreRules merges .serialverignore with paths.exclude.
func (a *App) ignoreRules(rootPath string) ([]string, error) {
	rules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return nil, err
	}
	rules = append(rules, a.cfg.GetStringSlice(excludeConfigKey)...)
	return fileutil.DedupeStrings(rules), nil
}
