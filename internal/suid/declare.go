package suid

import (
	"math"
	"strconv"
	"strings"

	"github.com/serialver-dev/serialver/internal/javaast"
)

// IdentifierField is the name of the serialization version field.
const IdentifierField = "serialVersionUID"

// Dialect is a source language a declaration can be rendered for.
type Dialect string

const (
	DialectJava   Dialect = "java"
	DialectGroovy Dialect = "groovy"
)

var declarationTemplates = map[Dialect]string{
	DialectJava:   "private static final long serialVersionUID = {0}L;",
	DialectGroovy: "private static final long serialVersionUID = {0}L",
}

// RenderDeclaration renders the field declaration carrying value. It returns
// false for an unsupported dialect.
func RenderDeclaration(d Dialect, value int64) (string, bool) {
	tmpl, ok := declarationTemplates[d]
	if !ok {
		return "", false
	}
	return strings.Replace(tmpl, "{0}", strconv.FormatInt(value, 10), 1), true
}

// DialectForExtension maps a file extension, with or without the leading
// dot, to its dialect.
func DialectForExtension(ext string) (Dialect, bool) {
	d := Dialect(strings.ToLower(strings.TrimPrefix(ext, ".")))
	_, ok := declarationTemplates[d]
	return d, ok
}

// DeclaredIdentifier returns the value of the serialVersionUID field c
// declares itself, when it is initialised with an integer literal.
func DeclaredIdentifier(c *javaast.ClassDecl) (int64, bool) {
	if c == nil {
		return 0, false
	}
	f := c.Field(IdentifierField)
	if f == nil || f.Literal == nil {
		return 0, false
	}
	return ParseLiteral(f.Literal)
}

// HasIdentifierField reports whether c declares a serialVersionUID field.
func HasIdentifierField(c *javaast.ClassDecl) bool {
	return c != nil && c.Field(IdentifierField) != nil
}

// HasMatchingIdentifierField reports whether c declares serialVersionUID
// with a literal value equal to expected.
func HasMatchingIdentifierField(c *javaast.ClassDecl, expected int64) bool {
	v, ok := DeclaredIdentifier(c)
	return ok && v == expected
}

// ParseLiteral evaluates a Java integer literal the way the compiler does:
// int literals wrap to 32 bits before widening, hexadecimal, octal and
// binary literals may use the full width as two's complement.
func ParseLiteral(lit *javaast.IntLiteral) (int64, bool) {
	if lit == nil {
		return 0, false
	}
	text := strings.ReplaceAll(lit.Text, "_", "")
	long := strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l")
	if long {
		text = text[:len(text)-1]
	}

	base := 10
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		base, text = 2, text[2:]
	case len(text) > 1 && text[0] == '0':
		base, text = 8, text[1:]
	}
	u, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, false
	}

	var v int64
	switch {
	case long && base == 10:
		if u > 1<<63 || (u == 1<<63 && !lit.Negated) {
			return 0, false
		}
		v = int64(u)
	case long:
		v = int64(u)
	case base == 10:
		if u > 1<<31 || (u == 1<<31 && !lit.Negated) {
			return 0, false
		}
		v = int64(u)
	default:
		if u > math.MaxUint32 {
			return 0, false
		}
		v = int64(int32(uint32(u)))
	}
	if lit.Negated {
		v = -v
	}
	return v, true
}
