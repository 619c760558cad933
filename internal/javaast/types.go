// Package javaast holds the Java declaration model built from tree-sitter
// parse trees. Declarations are plain Go data; executable bodies stay as
// tree-sitter nodes owned by the CompilationUnit that produced them.
package javaast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Kind represents the flavour of a type declaration
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Modifiers is the JVM access flag bitmap of a declaration.
type Modifiers int32

const (
	Public       Modifiers = 0x0001
	Private      Modifiers = 0x0002
	Protected    Modifiers = 0x0004
	Static       Modifiers = 0x0008
	Final        Modifiers = 0x0010
	Synchronized Modifiers = 0x0020
	Volatile     Modifiers = 0x0040
	Transient    Modifiers = 0x0080
	Native       Modifiers = 0x0100
	Interface    Modifiers = 0x0200
	Abstract     Modifiers = 0x0400
	Strict       Modifiers = 0x0800
)

var modifierKeywords = map[string]Modifiers{
	"public":       Public,
	"private":      Private,
	"protected":    Protected,
	"static":       Static,
	"final":        Final,
	"synchronized": Synchronized,
	"volatile":     Volatile,
	"transient":    Transient,
	"native":       Native,
	"abstract":     Abstract,
	"strictfp":     Strict,
}

// ModifierForKeyword maps a Java modifier keyword to its flag.
func ModifierForKeyword(keyword string) (Modifiers, bool) {
	m, ok := modifierKeywords[keyword]
	return m, ok
}

func (m Modifiers) Has(flag Modifiers) bool {
	return m&flag != 0
}

// TypeRef is a source-level type use with generic arguments stripped.
type TypeRef struct {
	Name string // as written, e.g. "int", "String", "Map.Entry", "java.util.List"
	Dims int
}

var primitiveDescriptors = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"void":    "V",
}

// PrimitiveDescriptor returns the JVM descriptor letter of a primitive
// (or void) type name.
func PrimitiveDescriptor(name string) (string, bool) {
	d, ok := primitiveDescriptors[name]
	return d, ok
}

// IsPrimitive reports whether t is a non-array primitive (void included).
func (t TypeRef) IsPrimitive() bool {
	_, ok := primitiveDescriptors[t.Name]
	return ok && t.Dims == 0
}

// IsString reports whether t names java.lang.String.
func (t TypeRef) IsString() bool {
	return t.Dims == 0 && (t.Name == "String" || t.Name == "java.lang.String")
}

func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

func (t TypeRef) String() string {
	return t.Name + strings.Repeat("[]", t.Dims)
}

// ConstInfo summarises whether an initializer can be a compile-time
// constant. Refs lists the names the expression depends on; each must
// itself resolve to a constant variable.
type ConstInfo struct {
	Possible bool
	Refs     []string
}

// IntLiteral is an integer literal initializer, optionally negated.
type IntLiteral struct {
	Text    string
	Negated bool
}

// Import is one import declaration.
type Import struct {
	Path     string
	Static   bool
	OnDemand bool
}

// TypeParam is a declared type variable with its first bound.
type TypeParam struct {
	Name  string
	Bound TypeRef
}

// Param is a formal parameter or record component.
type Param struct {
	Name    string
	Type    TypeRef
	Varargs bool
}

// FieldDecl is one declarator of a field declaration.
type FieldDecl struct {
	Name      string
	Modifiers Modifiers
	Type      TypeRef
	Init      *sitter.Node
	Const     ConstInfo
	Literal   *IntLiteral
	Owner     *ClassDecl
	Line      int
}

func (f *FieldDecl) HasInitializer() bool {
	return f.Init != nil
}

// MethodDecl is a method or constructor.
type MethodDecl struct {
	Name        string
	Modifiers   Modifiers
	TypeParams  []TypeParam
	Params      []Param
	Return      TypeRef // zero for constructors
	Body        *sitter.Node
	Owner       *ClassDecl
	Constructor bool
	Line        int
}

// Initializer is an instance or static initializer block.
type Initializer struct {
	Static bool
	Body   *sitter.Node
}

// ClassDecl is a class, interface, enum, record or annotation declaration.
// Local and anonymous classes are ClassDecls too, reachable through the
// Locals slice of their lexically enclosing class.
type ClassDecl struct {
	Name         string // simple name, empty for anonymous classes
	Binary       string // JVM binary name, dotted package, '$' between nesting levels
	Qualified    string // canonical name, empty for local and anonymous classes
	Kind         Kind
	Modifiers    Modifiers
	TypeParams   []TypeParam
	Superclass   *TypeRef
	Interfaces   []TypeRef
	Components   []Param
	Fields       []*FieldDecl
	Methods      []*MethodDecl
	Constructors []*MethodDecl
	Initializers []Initializer
	Nested       []*ClassDecl
	Locals       []*ClassDecl
	Outer        *ClassDecl
	Local        bool
	Anonymous    bool
	Unit         *CompilationUnit
	Node         *sitter.Node
	Body         *sitter.Node
	Line         int
}

func (c *ClassDecl) IsInterface() bool {
	return c.Kind == KindInterface || c.Kind == KindAnnotation
}

// Field returns the declared field with the given name.
func (c *ClassDecl) Field(name string) *FieldDecl {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// MethodsNamed returns the declared methods with the given name.
func (c *ClassDecl) MethodsNamed(name string) []*MethodDecl {
	var out []*MethodDecl
	for _, m := range c.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// Member returns the directly nested member type with the given name.
func (c *ClassDecl) Member(name string) *ClassDecl {
	for _, n := range c.Nested {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Outermost returns the top-level class enclosing c.
func (c *ClassDecl) Outermost() *ClassDecl {
	top := c
	for top.Outer != nil {
		top = top.Outer
	}
	return top
}

// Encloses reports whether c is other or lexically contains it.
func (c *ClassDecl) Encloses(other *ClassDecl) bool {
	for cur := other; cur != nil; cur = cur.Outer {
		if cur == c {
			return true
		}
	}
	return false
}

// CanonicalText is the source-level name used when spelling the type:
// the canonical name when one exists, otherwise the simple name.
func (c *ClassDecl) CanonicalText() string {
	if c.Qualified != "" {
		return c.Qualified
	}
	return c.Name
}

// NodeKey identifies a tree-sitter node within one tree.
type NodeKey struct {
	Start uint32
	End   uint32
	Type  string
}

// KeyOf returns the identity key of a node.
func KeyOf(n *sitter.Node) NodeKey {
	return NodeKey{Start: n.StartByte(), End: n.EndByte(), Type: n.Type()}
}

// CompilationUnit is one parsed Java source file.
type CompilationUnit struct {
	Path     string
	Package  string
	Imports  []Import
	Types    []*ClassDecl
	Source   []byte
	Hash     string
	HasError bool

	tree    *sitter.Tree
	classAt map[NodeKey]*ClassDecl
}

// NewCompilationUnit wraps a parsed tree. The unit owns the tree until Close.
func NewCompilationUnit(path string, source []byte, tree *sitter.Tree) *CompilationUnit {
	return &CompilationUnit{
		Path:    path,
		Source:  source,
		tree:    tree,
		classAt: make(map[NodeKey]*ClassDecl),
	}
}

// Root returns the root node of the parse tree.
func (u *CompilationUnit) Root() *sitter.Node {
	if u.tree == nil {
		return nil
	}
	return u.tree.RootNode()
}

// Text returns the source text of n.
func (u *CompilationUnit) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(u.Source)
}

// Bind records the declaration node (or anonymous class body) of c.
func (u *CompilationUnit) Bind(n *sitter.Node, c *ClassDecl) {
	u.classAt[KeyOf(n)] = c
}

// ClassAt returns the class declared by n, if n is a declaration node or an
// anonymous class body.
func (u *CompilationUnit) ClassAt(n *sitter.Node) *ClassDecl {
	if n == nil {
		return nil
	}
	return u.classAt[KeyOf(n)]
}

// AllClasses returns every named member and top-level class in pre-order.
// Local and anonymous classes are not included.
func (u *CompilationUnit) AllClasses() []*ClassDecl {
	var out []*ClassDecl
	var visit func(c *ClassDecl)
	visit = func(c *ClassDecl) {
		out = append(out, c)
		for _, n := range c.Nested {
			visit(n)
		}
	}
	for _, t := range u.Types {
		visit(t)
	}
	return out
}

// FindClass looks a class up by simple, canonical or binary name.
func (u *CompilationUnit) FindClass(name string) *ClassDecl {
	for _, c := range u.AllClasses() {
		if c.Name == name || c.Qualified == name || c.Binary == name {
			return c
		}
	}
	return nil
}

// Close releases the parse tree.
func (u *CompilationUnit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}
