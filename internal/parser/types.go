package parser

import "github.com/serialver-dev/serialver/internal/javaast"

// ParseIssue captures non-fatal parser warnings/errors encountered while scanning files.
type ParseIssue struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// ParseResult holds the parsed compilation units of a source tree
type ParseResult struct {
	Units    []*javaast.CompilationUnit
	RootPath string
	Issues   []ParseIssue
	// Err is set when parsing stopped early, e.g. on context cancellation.
	Err error
}

// Merge appends the units and issues of other.
func (r *ParseResult) Merge(other *ParseResult) {
	if other == nil {
		return
	}
	r.Units = append(r.Units, other.Units...)
	r.Issues = append(r.Issues, other.Issues...)
	if r.Err == nil {
		r.Err = other.Err
	}
}

// Unit returns the unit parsed from path, if any.
func (r *ParseResult) Unit(path string) *javaast.CompilationUnit {
	for _, u := range r.Units {
		if u.Path == path {
			return u
		}
	}
	return nil
}

// Close releases every parse tree held by the result.
func (r *ParseResult) Close() {
	for _, u := range r.Units {
		u.Close()
	}
}
