package languages

import "github.com/serialver-dev/serialver/internal/parser"

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	r.Register(NewJavaParser())

	return r
}
