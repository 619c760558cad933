package languages

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/serialver-dev/serialver/internal/javaast"
)

// JavaParser implements parsing for Java source files
type JavaParser struct{}

// NewJavaParser creates a new Java parser
func NewJavaParser() *JavaParser {
	return &JavaParser{}
}

func (j *JavaParser) Language() string {
	return "java"
}

func (j *JavaParser) Extensions() []string {
	return []string{".java"}
}

// Parse builds the declaration model of one compilation unit. A fresh
// sitter.Parser is used per call so units can be parsed concurrently.
func (j *JavaParser) Parse(ctx context.Context, filename string, content []byte) (*javaast.CompilationUnit, error) {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}

	unit := javaast.NewCompilationUnit(filename, content, tree)
	root := tree.RootNode()
	unit.HasError = root.HasError()

	b := &javaBuilder{unit: unit, src: content, counters: make(map[string]int)}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			unit.Package = b.packageName(child)
		case "import_declaration":
			unit.Imports = append(unit.Imports, b.importDecl(child))
		default:
			if isTypeDeclaration(child.Type()) {
				unit.Types = append(unit.Types, b.buildClass(child, nil, false))
			}
		}
	}

	return unit, nil
}

type javaBuilder struct {
	unit     *javaast.CompilationUnit
	src      []byte
	counters map[string]int
}

func isTypeDeclaration(nodeType string) bool {
	switch nodeType {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

func kindOf(nodeType string) javaast.Kind {
	switch nodeType {
	case "interface_declaration":
		return javaast.KindInterface
	case "enum_declaration":
		return javaast.KindEnum
	case "record_declaration":
		return javaast.KindRecord
	case "annotation_type_declaration":
		return javaast.KindAnnotation
	default:
		return javaast.KindClass
	}
}

func (b *javaBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Content(b.src))
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (b *javaBuilder) packageName(node *sitter.Node) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return b.text(child)
		}
	}
	return ""
}

func (b *javaBuilder) importDecl(node *sitter.Node) javaast.Import {
	imp := javaast.Import{}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "static":
			imp.Static = true
		case "scoped_identifier", "identifier":
			imp.Path = b.text(child)
		case "asterisk":
			imp.OnDemand = true
		}
	}
	return imp
}

func (b *javaBuilder) buildClass(node *sitter.Node, outer *javaast.ClassDecl, local bool) *javaast.ClassDecl {
	c := &javaast.ClassDecl{
		Name:  b.text(node.ChildByFieldName("name")),
		Kind:  kindOf(node.Type()),
		Outer: outer,
		Local: local,
		Unit:  b.unit,
		Node:  node,
		Line:  line(node),
	}
	c.Modifiers = b.modifiers(childOfType(node, "modifiers"))
	c.TypeParams = b.typeParams(node.ChildByFieldName("type_parameters"))
	b.assignNames(c)

	switch c.Kind {
	case javaast.KindClass:
		if sc := node.ChildByFieldName("superclass"); sc != nil {
			t := b.typeRef(firstTypeChild(sc))
			c.Superclass = &t
		}
		c.Interfaces = b.typeList(node.ChildByFieldName("interfaces"))
	case javaast.KindInterface:
		c.Interfaces = b.typeList(childOfType(node, "extends_interfaces"))
	case javaast.KindEnum:
		c.Interfaces = b.typeList(node.ChildByFieldName("interfaces"))
	case javaast.KindRecord:
		c.Interfaces = b.typeList(node.ChildByFieldName("interfaces"))
		c.Components = b.formalParams(node.ChildByFieldName("parameters"))
	}

	b.unit.Bind(node, c)
	c.Body = node.ChildByFieldName("body")
	b.members(c, c.Body)
	applyImplicitClassModifiers(c)
	return c
}

func (b *javaBuilder) buildAnonymous(site *sitter.Node, body *sitter.Node, superType javaast.TypeRef, owner *javaast.ClassDecl) *javaast.ClassDecl {
	c := &javaast.ClassDecl{
		Kind:      javaast.KindClass,
		Outer:     owner,
		Anonymous: true,
		Unit:      b.unit,
		Node:      body,
		Body:      body,
		Line:      line(site),
	}
	if !superType.IsZero() {
		c.Superclass = &superType
	}
	b.counters[owner.Binary]++
	c.Binary = owner.Binary + "$" + strconv.Itoa(b.counters[owner.Binary])
	b.unit.Bind(body, c)
	b.members(c, body)
	return c
}

func (b *javaBuilder) assignNames(c *javaast.ClassDecl) {
	switch {
	case c.Outer == nil:
		c.Qualified = c.Name
		if b.unit.Package != "" {
			c.Qualified = b.unit.Package + "." + c.Name
		}
		c.Binary = c.Qualified
	case c.Local:
		key := c.Outer.Binary + "$" + c.Name
		b.counters[key]++
		c.Binary = c.Outer.Binary + "$" + strconv.Itoa(b.counters[key]) + c.Name
	default:
		if c.Outer.Qualified != "" {
			c.Qualified = c.Outer.Qualified + "." + c.Name
		}
		c.Binary = c.Outer.Binary + "$" + c.Name
	}
}

func applyImplicitClassModifiers(c *javaast.ClassDecl) {
	switch c.Kind {
	case javaast.KindInterface, javaast.KindAnnotation:
		c.Modifiers |= javaast.Interface | javaast.Abstract
	case javaast.KindRecord:
		c.Modifiers |= javaast.Final
	case javaast.KindEnum:
		specialized := false
		for _, l := range c.Locals {
			if l.Anonymous && l.Outer == c && l.Superclass != nil && l.Superclass.Name == c.Name {
				specialized = true
			}
		}
		if !specialized {
			c.Modifiers |= javaast.Final
		}
	}
	if c.Outer != nil && !c.Local {
		if c.Outer.IsInterface() {
			c.Modifiers |= javaast.Public | javaast.Static
		}
	}
	if c.Outer != nil && c.Kind != javaast.KindClass {
		c.Modifiers |= javaast.Static
	}
}

func (b *javaBuilder) modifiers(node *sitter.Node) javaast.Modifiers {
	var mods javaast.Modifiers
	if node == nil {
		return mods
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			continue
		}
		if m, ok := javaast.ModifierForKeyword(b.text(child)); ok {
			mods |= m
		}
	}
	return mods
}

func (b *javaBuilder) typeParams(node *sitter.Node) []javaast.TypeParam {
	if node == nil {
		return nil
	}
	var out []javaast.TypeParam
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "type_parameter" {
			continue
		}
		tp := javaast.TypeParam{}
		for k := 0; k < int(child.NamedChildCount()); k++ {
			part := child.NamedChild(k)
			switch part.Type() {
			case "type_identifier", "identifier":
				if tp.Name == "" {
					tp.Name = b.text(part)
				}
			case "type_bound":
				tp.Bound = b.typeRef(firstTypeChild(part))
			}
		}
		out = append(out, tp)
	}
	return out
}

func (b *javaBuilder) typeList(node *sitter.Node) []javaast.TypeRef {
	if node == nil {
		return nil
	}
	if node.Type() != "type_list" {
		if list := childOfType(node, "type_list"); list != nil {
			node = list
		}
	}
	var out []javaast.TypeRef
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if !javaast.IsTypeNode(child.Type()) {
			continue
		}
		out = append(out, b.typeRef(child))
	}
	return out
}

func (b *javaBuilder) members(c *javaast.ClassDecl, body *sitter.Node) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			b.fieldDecl(c, child)
		case "method_declaration":
			c.Methods = append(c.Methods, b.methodDecl(c, child, false))
		case "annotation_type_element_declaration":
			c.Methods = append(c.Methods, b.annotationElement(c, child))
		case "constructor_declaration":
			c.Constructors = append(c.Constructors, b.methodDecl(c, child, true))
		case "compact_constructor_declaration":
			ctor := b.methodDecl(c, child, true)
			ctor.Params = append([]javaast.Param(nil), c.Components...)
			c.Constructors = append(c.Constructors, ctor)
		case "static_initializer":
			block := childOfType(child, "block")
			c.Initializers = append(c.Initializers, javaast.Initializer{Static: true, Body: block})
			b.collectLocals(block, c)
		case "block":
			c.Initializers = append(c.Initializers, javaast.Initializer{Body: child})
			b.collectLocals(child, c)
		case "enum_constant":
			b.enumConstant(c, child)
		case "enum_body_declarations":
			b.members(c, child)
		default:
			if isTypeDeclaration(child.Type()) {
				c.Nested = append(c.Nested, b.buildClass(child, c, false))
			}
		}
	}

	if c.Kind == javaast.KindRecord {
		for _, comp := range c.Components {
			c.Fields = append(c.Fields, &javaast.FieldDecl{
				Name:      comp.Name,
				Modifiers: javaast.Private | javaast.Final,
				Type:      comp.Type,
				Owner:     c,
				Line:      c.Line,
			})
		}
	}
}

func (b *javaBuilder) enumConstant(c *javaast.ClassDecl, node *sitter.Node) {
	c.Fields = append(c.Fields, &javaast.FieldDecl{
		Name:      b.text(node.ChildByFieldName("name")),
		Modifiers: javaast.Public | javaast.Static | javaast.Final,
		Type:      javaast.TypeRef{Name: c.Name},
		Owner:     c,
		Line:      line(node),
	})
	b.collectLocals(node.ChildByFieldName("arguments"), c)
	if body := node.ChildByFieldName("body"); body != nil {
		c.Locals = append(c.Locals, b.buildAnonymous(node, body, javaast.TypeRef{Name: c.Name}, c))
	}
}

func (b *javaBuilder) fieldDecl(c *javaast.ClassDecl, node *sitter.Node) {
	mods := b.modifiers(childOfType(node, "modifiers"))
	if c.IsInterface() {
		mods |= javaast.Public | javaast.Static | javaast.Final
	}
	base := b.typeRef(node.ChildByFieldName("type"))

	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		t := base
		t.Dims += javaast.CountDims(decl.ChildByFieldName("dimensions"), b.src)
		f := &javaast.FieldDecl{
			Name:      b.text(decl.ChildByFieldName("name")),
			Modifiers: mods,
			Type:      t,
			Owner:     c,
			Line:      line(decl),
		}
		if value := decl.ChildByFieldName("value"); value != nil {
			f.Init = value
			f.Const = b.analyzeConst(value)
			f.Literal = b.intLiteral(value)
			b.collectLocals(value, c)
		}
		c.Fields = append(c.Fields, f)
	}
}

func (b *javaBuilder) methodDecl(c *javaast.ClassDecl, node *sitter.Node, ctor bool) *javaast.MethodDecl {
	m := &javaast.MethodDecl{
		Name:        b.text(node.ChildByFieldName("name")),
		Modifiers:   b.modifiers(childOfType(node, "modifiers")),
		TypeParams:  b.typeParams(node.ChildByFieldName("type_parameters")),
		Params:      b.formalParams(node.ChildByFieldName("parameters")),
		Body:        node.ChildByFieldName("body"),
		Owner:       c,
		Constructor: ctor,
		Line:        line(node),
	}
	if ctor {
		m.Name = "<init>"
		if c.Kind == javaast.KindEnum {
			m.Modifiers |= javaast.Private
		}
	} else {
		m.Return = b.typeRef(node.ChildByFieldName("type"))
		m.Return.Dims += javaast.CountDims(node.ChildByFieldName("dimensions"), b.src)
	}

	if c.IsInterface() && !m.Modifiers.Has(javaast.Private) {
		m.Modifiers |= javaast.Public
		if m.Body == nil && !m.Modifiers.Has(javaast.Static) {
			m.Modifiers |= javaast.Abstract
		}
	}

	b.collectLocals(m.Body, c)
	return m
}

func (b *javaBuilder) annotationElement(c *javaast.ClassDecl, node *sitter.Node) *javaast.MethodDecl {
	m := &javaast.MethodDecl{
		Name:      b.text(node.ChildByFieldName("name")),
		Modifiers: b.modifiers(childOfType(node, "modifiers")) | javaast.Public | javaast.Abstract,
		Return:    b.typeRef(node.ChildByFieldName("type")),
		Owner:     c,
		Line:      line(node),
	}
	m.Return.Dims += javaast.CountDims(node.ChildByFieldName("dimensions"), b.src)
	return m
}

func (b *javaBuilder) formalParams(node *sitter.Node) []javaast.Param {
	if node == nil {
		return nil
	}
	var out []javaast.Param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "formal_parameter":
			t := b.typeRef(child.ChildByFieldName("type"))
			t.Dims += javaast.CountDims(child.ChildByFieldName("dimensions"), b.src)
			out = append(out, javaast.Param{Name: b.text(child.ChildByFieldName("name")), Type: t})
		case "spread_parameter":
			p := javaast.Param{Varargs: true}
			for k := 0; k < int(child.NamedChildCount()); k++ {
				part := child.NamedChild(k)
				switch {
				case part.Type() == "variable_declarator":
					p.Name = b.text(part.ChildByFieldName("name"))
					p.Type.Dims += javaast.CountDims(part.ChildByFieldName("dimensions"), b.src)
				case javaast.IsTypeNode(part.Type()) && p.Type.Name == "":
					dims := p.Type.Dims
					p.Type = b.typeRef(part)
					p.Type.Dims += dims
				}
			}
			p.Type.Dims++
			out = append(out, p)
		}
	}
	return out
}

func (b *javaBuilder) typeRef(node *sitter.Node) javaast.TypeRef {
	return javaast.TypeRefFromNode(node, b.src)
}

// collectLocals registers the local and anonymous classes declared inside
// an executable body or initializer expression.
func (b *javaBuilder) collectLocals(node *sitter.Node, owner *javaast.ClassDecl) {
	if node == nil {
		return
	}
	if isTypeDeclaration(node.Type()) {
		owner.Locals = append(owner.Locals, b.buildClass(node, owner, true))
		return
	}
	if node.Type() == "object_creation_expression" {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "class_body" {
				superType := b.typeRef(node.ChildByFieldName("type"))
				owner.Locals = append(owner.Locals, b.buildAnonymous(node, child, superType, owner))
				continue
			}
			b.collectLocals(child, owner)
		}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.collectLocals(node.NamedChild(i), owner)
	}
}

func (b *javaBuilder) analyzeConst(node *sitter.Node) javaast.ConstInfo {
	info := javaast.ConstInfo{Possible: true}
	b.constWalk(node, &info)
	if !info.Possible {
		info.Refs = nil
	}
	return info
}

func (b *javaBuilder) constWalk(node *sitter.Node, info *javaast.ConstInfo) {
	if !info.Possible || node == nil {
		return
	}
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal",
		"decimal_floating_point_literal", "hex_floating_point_literal", "character_literal",
		"string_literal", "true", "false", "line_comment", "block_comment":
		return
	case "parenthesized_expression", "unary_expression", "binary_expression", "ternary_expression":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			b.constWalk(node.NamedChild(i), info)
		}
	case "cast_expression":
		t := b.typeRef(node.ChildByFieldName("type"))
		if !(t.IsPrimitive() || t.IsString()) {
			info.Possible = false
			return
		}
		b.constWalk(node.ChildByFieldName("value"), info)
	case "identifier":
		info.Refs = append(info.Refs, b.text(node))
	case "field_access":
		if !javaast.IsNameChain(node) {
			info.Possible = false
			return
		}
		info.Refs = append(info.Refs, javaast.NameChainText(node, b.src))
	default:
		info.Possible = false
	}
}

func (b *javaBuilder) intLiteral(node *sitter.Node) *javaast.IntLiteral {
	negated := false
	if node.Type() == "unary_expression" {
		if b.text(node.ChildByFieldName("operator")) != "-" {
			return nil
		}
		negated = true
		node = node.ChildByFieldName("operand")
		if node == nil {
			return nil
		}
	}
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return &javaast.IntLiteral{Text: b.text(node), Negated: negated}
	}
	return nil
}

func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func firstTypeChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if javaast.IsTypeNode(child.Type()) {
			return child
		}
	}
	return nil
}
