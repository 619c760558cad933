// Package resolve maps source-level type names to classes across the set of
// compilation units being analysed, falling back to a table of well-known
// platform types.
package resolve

import (
	"strings"
	"unicode"

	"github.com/serialver-dev/serialver/internal/javaast"
)

// Type is a resolved class type. Decl is nil for types outside the scanned
// sources.
type Type struct {
	Decl      *javaast.ClassDecl
	Qualified string // canonical name, dotted
	Binary    string // binary name, dotted package and '$' between nesting levels
}

// Internal returns the binary name in JVM internal form (slash separated).
func (t Type) Internal() string {
	return strings.ReplaceAll(t.Binary, ".", "/")
}

// CanonicalText is the name used when spelling the type in source.
func (t Type) CanonicalText() string {
	if t.Qualified != "" {
		return t.Qualified
	}
	if t.Decl != nil {
		return t.Decl.CanonicalText()
	}
	return t.Binary
}

func fromDecl(c *javaast.ClassDecl) Type {
	return Type{Decl: c, Qualified: c.Qualified, Binary: c.Binary}
}

// Index is the read-only compilation scope shared by every computation of a run.
type Index struct {
	types map[string]*javaast.ClassDecl // canonical name -> declaration
}

// NewIndex indexes every named top-level and member class of units.
func NewIndex(units ...*javaast.CompilationUnit) *Index {
	x := &Index{types: make(map[string]*javaast.ClassDecl)}
	for _, unit := range units {
		if unit == nil {
			continue
		}
		for _, c := range unit.AllClasses() {
			if c.Qualified == "" {
				continue
			}
			if _, exists := x.types[c.Qualified]; !exists {
				x.types[c.Qualified] = c
			}
		}
	}
	return x
}

// Lookup returns the indexed declaration with the given canonical name.
func (x *Index) Lookup(qualified string) *javaast.ClassDecl {
	return x.types[qualified]
}

// Len returns the number of indexed classes.
func (x *Index) Len() int {
	return len(x.types)
}

// ResolveType resolves a type name as written inside from.
func (x *Index) ResolveType(name string, from *javaast.ClassDecl) (Type, bool) {
	if from == nil {
		return x.resolveQualified(name)
	}
	return x.resolveIn(name, from, from.Unit)
}

// ResolveInUnit resolves a type name at the top level of unit.
func (x *Index) ResolveInUnit(name string, unit *javaast.CompilationUnit) (Type, bool) {
	return x.resolveIn(name, nil, unit)
}

func (x *Index) resolveIn(name string, from *javaast.ClassDecl, unit *javaast.CompilationUnit) (Type, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Type{}, false
	}
	segments := strings.Split(name, ".")
	if head, ok := x.resolveSimple(segments[0], from, unit); ok {
		return x.memberChain(head, segments[1:])
	}
	if len(segments) > 1 {
		return x.resolveQualified(name)
	}
	return Type{}, false
}

func (x *Index) resolveSimple(name string, from *javaast.ClassDecl, unit *javaast.CompilationUnit) (Type, bool) {
	for c := from; c != nil; c = c.Outer {
		if t, ok := x.memberType(fromDecl(c), name, map[*javaast.ClassDecl]bool{}); ok {
			return t, true
		}
		for _, local := range c.Locals {
			if !local.Anonymous && local.Name == name {
				return fromDecl(local), true
			}
		}
		if !c.Anonymous && c.Name == name {
			return fromDecl(c), true
		}
	}
	if unit == nil {
		return Type{}, false
	}

	for _, t := range unit.Types {
		if t.Name == name {
			return fromDecl(t), true
		}
	}

	for _, imp := range unit.Imports {
		if imp.OnDemand || !strings.HasSuffix("."+imp.Path, "."+name) {
			continue
		}
		if t, ok := x.resolveQualified(imp.Path); ok {
			return t, true
		}
	}

	if decl := x.types[qualify(unit.Package, name)]; decl != nil {
		return fromDecl(decl), true
	}

	onDemand := false
	for _, imp := range unit.Imports {
		if !imp.OnDemand {
			continue
		}
		onDemand = true
		if decl := x.types[imp.Path+"."+name]; decl != nil {
			return fromDecl(decl), true
		}
		if owner := x.types[imp.Path]; owner != nil {
			if t, ok := x.memberType(fromDecl(owner), name, map[*javaast.ClassDecl]bool{}); ok {
				return t, true
			}
		}
		if jdkHas(imp.Path, name) {
			return external(imp.Path, []string{name}), true
		}
	}

	if jdkHas("java.lang", name) {
		return external("java.lang", []string{name}), true
	}

	// Without on-demand imports an unknown simple type name can only live in
	// the unit's own package.
	if !onDemand && unit.Package != "" && startsUpper(name) {
		return external(unit.Package, []string{name}), true
	}
	return Type{}, false
}

func (x *Index) resolveQualified(name string) (Type, bool) {
	if decl := x.types[name]; decl != nil {
		return fromDecl(decl), true
	}
	segments := strings.Split(name, ".")
	for i := len(segments) - 1; i >= 1; i-- {
		if decl := x.types[strings.Join(segments[:i], ".")]; decl != nil {
			return x.memberChain(fromDecl(decl), segments[i:])
		}
	}
	for i := len(segments) - 1; i >= 1; i-- {
		pkg := strings.Join(segments[:i], ".")
		if jdkHas(pkg, segments[i]) {
			return external(pkg, segments[i:]), true
		}
	}
	for i, seg := range segments {
		if startsUpper(seg) {
			if i == 0 {
				return Type{}, false
			}
			return external(strings.Join(segments[:i], "."), segments[i:]), true
		}
	}
	return Type{}, false
}

func (x *Index) memberChain(t Type, rest []string) (Type, bool) {
	for _, seg := range rest {
		next, ok := x.memberType(t, seg, map[*javaast.ClassDecl]bool{})
		if !ok {
			return Type{}, false
		}
		t = next
	}
	return t, true
}

// memberType finds a member type of t, searching inherited members of
// indexed supertypes as well.
func (x *Index) memberType(t Type, name string, visited map[*javaast.ClassDecl]bool) (Type, bool) {
	if t.Decl == nil {
		return Type{
			Qualified: t.Qualified + "." + name,
			Binary:    t.Binary + "$" + name,
		}, t.Binary != ""
	}
	if visited[t.Decl] {
		return Type{}, false
	}
	visited[t.Decl] = true

	if m := t.Decl.Member(name); m != nil {
		return fromDecl(m), true
	}
	for _, super := range x.declaredSupertypes(t.Decl) {
		if super.Decl == nil {
			continue
		}
		if found, ok := x.memberType(super, name, visited); ok {
			return found, true
		}
	}
	return Type{}, false
}

// Supertypes returns the resolved superclass and interfaces of c.
func (x *Index) Supertypes(c *javaast.ClassDecl) []Type {
	return x.declaredSupertypes(c)
}

func (x *Index) declaredSupertypes(c *javaast.ClassDecl) []Type {
	refs := make([]javaast.TypeRef, 0, len(c.Interfaces)+1)
	if c.Superclass != nil {
		refs = append(refs, *c.Superclass)
	}
	refs = append(refs, c.Interfaces...)

	out := make([]Type, 0, len(refs))
	for _, ref := range refs {
		if t, ok := x.resolveSupertype(ref.Name, c); ok {
			out = append(out, t)
		}
	}
	return out
}

// Interfaces returns the resolved direct interfaces of c. Unresolvable names
// are dropped.
func (x *Index) Interfaces(c *javaast.ClassDecl) []Type {
	out := make([]Type, 0, len(c.Interfaces))
	for _, ref := range c.Interfaces {
		if t, ok := x.resolveSupertype(ref.Name, c); ok {
			out = append(out, t)
		}
	}
	return out
}

// Supertype names are resolved from the scope enclosing the declaration so a
// class never looks into its own members while resolving its header.
func (x *Index) resolveSupertype(name string, c *javaast.ClassDecl) (Type, bool) {
	t, ok := x.resolveIn(name, c.Outer, c.Unit)
	if ok && t.Decl == c {
		return Type{}, false
	}
	return t, ok
}

// IsSerializable reports whether c transitively implements java.io.Serializable.
func (x *Index) IsSerializable(c *javaast.ClassDecl) bool {
	if c == nil {
		return false
	}
	return x.serializable(fromDecl(c), map[*javaast.ClassDecl]bool{})
}

func (x *Index) serializable(t Type, visited map[*javaast.ClassDecl]bool) bool {
	if t.Decl == nil {
		return isSerializableJDK(t.Qualified)
	}
	if visited[t.Decl] {
		return false
	}
	visited[t.Decl] = true

	if t.Decl.Kind == javaast.KindEnum {
		return true
	}
	for _, super := range x.declaredSupertypes(t.Decl) {
		if x.serializable(super, visited) {
			return true
		}
	}
	return false
}

// FindField looks name up in c and then in its indexed supertypes.
func (x *Index) FindField(c *javaast.ClassDecl, name string) *javaast.FieldDecl {
	return x.findField(c, name, map[*javaast.ClassDecl]bool{})
}

func (x *Index) findField(c *javaast.ClassDecl, name string, visited map[*javaast.ClassDecl]bool) *javaast.FieldDecl {
	if c == nil || visited[c] {
		return nil
	}
	visited[c] = true
	if f := c.Field(name); f != nil {
		return f
	}
	for _, super := range x.declaredSupertypes(c) {
		if f := x.findField(super.Decl, name, visited); f != nil {
			return f
		}
	}
	return nil
}

// FindMethods returns the methods named name declared by c or, when c has
// none, by the nearest indexed supertype that does.
func (x *Index) FindMethods(c *javaast.ClassDecl, name string) []*javaast.MethodDecl {
	return x.findMethods(c, name, map[*javaast.ClassDecl]bool{})
}

func (x *Index) findMethods(c *javaast.ClassDecl, name string, visited map[*javaast.ClassDecl]bool) []*javaast.MethodDecl {
	if c == nil || visited[c] {
		return nil
	}
	visited[c] = true
	if ms := c.MethodsNamed(name); len(ms) > 0 {
		return ms
	}
	for _, super := range x.declaredSupertypes(c) {
		if ms := x.findMethods(super.Decl, name, visited); len(ms) > 0 {
			return ms
		}
	}
	return nil
}

// Superclass returns the resolved superclass of c, if it has one in scope.
func (x *Index) Superclass(c *javaast.ClassDecl) (Type, bool) {
	if c == nil || c.Superclass == nil {
		return Type{}, false
	}
	return x.resolveSupertype(c.Superclass.Name, c)
}

// TypeVariable finds a type parameter named name visible from method m of
// class c.
func TypeVariable(name string, m *javaast.MethodDecl, c *javaast.ClassDecl) (javaast.TypeParam, bool) {
	if m != nil {
		for _, tp := range m.TypeParams {
			if tp.Name == name {
				return tp, true
			}
		}
	}
	for cur := c; cur != nil; cur = cur.Outer {
		for _, tp := range cur.TypeParams {
			if tp.Name == name {
				return tp, true
			}
		}
	}
	return javaast.TypeParam{}, false
}

func external(pkg string, classes []string) Type {
	return Type{
		Qualified: qualify(pkg, strings.Join(classes, ".")),
		Binary:    qualify(pkg, strings.Join(classes, "$")),
	}
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
