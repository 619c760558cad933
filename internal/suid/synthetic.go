package suid

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/resolve"
)

// usage is how a field reference is used by its parent expression.
type usage int

const (
	useRead usage = iota
	useAssign
	usePreIncrement
	usePreDecrement
	usePostIncrement
	usePostDecrement
)

var bridgeOpcodes = map[usage]string{
	useRead:          "00",
	useAssign:        "02",
	usePreIncrement:  "04",
	usePreDecrement:  "06",
	usePostIncrement: "08",
	usePostDecrement: "10",
}

type elementKind int

const (
	elemUnresolved elementKind = iota
	elemLocal
	elemField
	elemMethod
	elemClass
)

// element is what a reference expression resolved to. owner is the class
// lexically containing the element, nil when unknown or top-level.
type element struct {
	kind   elementKind
	owner  *javaast.ClassDecl
	field  *javaast.FieldDecl
	method *javaast.MethodDecl
}

func fieldElement(f *javaast.FieldDecl) element {
	return element{kind: elemField, owner: f.Owner, field: f}
}

func methodElement(m *javaast.MethodDecl) element {
	return element{kind: elemMethod, owner: m.Owner, method: m}
}

func classElement(t resolve.Type) element {
	el := element{kind: elemClass}
	if t.Decl != nil {
		el.owner = t.Decl.Outer
	}
	return el
}

// valueType is the best-effort static type of an expression. name is the
// canonical class name or primitive keyword, empty when unknown.
type valueType struct {
	decl *javaast.ClassDecl
	name string
	dims int
}

func (v valueType) known() bool {
	return v.name != ""
}

func primitiveType(name string) valueType {
	return valueType{name: name}
}

var stringType = valueType{name: "java.lang.String"}

type frame struct {
	class  *javaast.ClassDecl
	method *javaast.MethodDecl
	scopes []map[string]valueType
}

// infer walks the whole body of the target class once, nested, local and
// anonymous classes included, and adds the members the compiler would
// synthesize for it.
func (w *work) infer() {
	if w.target.Unit == nil || w.target.Body == nil {
		return
	}
	w.walkClass(w.target)
}

func (w *work) current() *frame {
	return w.frames[len(w.frames)-1]
}

func (w *work) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Content(w.target.Unit.Source))
}

func (w *work) walkClass(c *javaast.ClassDecl) {
	if c == nil || c.Body == nil {
		return
	}
	if !c.Anonymous {
		for _, super := range w.engine.index.Supertypes(c) {
			w.typeReference(super.Decl, c)
		}
	}

	w.frames = append(w.frames, &frame{class: c})
	defer func() { w.frames = w.frames[:len(w.frames)-1] }()

	bodies := make(map[javaast.NodeKey]*javaast.MethodDecl, len(c.Methods)+len(c.Constructors))
	for _, group := range [][]*javaast.MethodDecl{c.Methods, c.Constructors} {
		for _, m := range group {
			if m.Body != nil {
				bodies[javaast.KeyOf(m.Body)] = m
			}
		}
	}
	w.walkMembers(c.Body, bodies)
}

func (w *work) walkMembers(body *sitter.Node, bodies map[javaast.NodeKey]*javaast.MethodDecl) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			for k := 0; k < int(child.NamedChildCount()); k++ {
				decl := child.NamedChild(k)
				if decl.Type() != "variable_declarator" {
					continue
				}
				if value := decl.ChildByFieldName("value"); value != nil {
					w.scoped(func() { w.expr(value, useRead) })
				}
			}
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			if mb := child.ChildByFieldName("body"); mb != nil {
				w.walkMethod(bodies[javaast.KeyOf(mb)], mb)
			}
		case "static_initializer", "block":
			w.scoped(func() { w.walkChildren(child) })
		case "enum_constant":
			w.walk(child.ChildByFieldName("arguments"))
			if cb := child.ChildByFieldName("body"); cb != nil {
				w.walkClass(w.target.Unit.ClassAt(cb))
			}
		case "enum_body_declarations":
			w.walkMembers(child, bodies)
		default:
			if nested := w.target.Unit.ClassAt(child); nested != nil {
				w.walkClass(nested)
			}
		}
	}
}

func (w *work) walkMethod(m *javaast.MethodDecl, body *sitter.Node) {
	f := w.current()
	prev := f.method
	f.method = m
	w.scoped(func() {
		if m != nil {
			for _, p := range m.Params {
				w.declare(p.Name, w.resolveRef(p.Type, f.class, m))
			}
		}
		w.walkChildren(body)
	})
	f.method = prev
}

func (w *work) scoped(fn func()) {
	f := w.current()
	f.scopes = append(f.scopes, make(map[string]valueType))
	fn()
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (w *work) declare(name string, t valueType) {
	if name == "" {
		return
	}
	f := w.current()
	if len(f.scopes) == 0 {
		f.scopes = append(f.scopes, make(map[string]valueType))
	}
	f.scopes[len(f.scopes)-1][name] = t
}

func (w *work) walkChildren(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// walk dispatches statements and declarations; expressions go through expr.
func (w *work) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		w.walkClass(w.target.Unit.ClassAt(n))
	case "modifiers", "marker_annotation", "annotation", "type_arguments", "type_parameters",
		"dimensions", "scoped_identifier", "break_statement", "continue_statement",
		"line_comment", "block_comment":
	case "labeled_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child.Type() != "identifier" {
				w.walk(child)
			}
		}
	case "block", "switch_block", "for_statement", "switch_block_statement_group", "switch_rule":
		w.scoped(func() { w.walkChildren(n) })
	case "local_variable_declaration":
		w.localVariables(n)
	case "enhanced_for_statement":
		w.scoped(func() { w.enhancedFor(n) })
	case "catch_clause":
		w.scoped(func() { w.catchClause(n) })
	case "try_with_resources_statement":
		w.scoped(func() { w.tryWithResources(n) })
	case "assert_statement":
		w.walkChildren(n)
		w.onAssert()
	case "type_pattern", "record_pattern", "record_pattern_component":
		w.pattern(n)
	default:
		if javaast.IsTypeNode(n.Type()) {
			return
		}
		if isExpression(n.Type()) {
			w.expr(n, useRead)
			return
		}
		w.walkChildren(n)
	}
}

func isExpression(nodeType string) bool {
	switch nodeType {
	case "identifier", "field_access", "method_invocation", "object_creation_expression",
		"assignment_expression", "update_expression", "parenthesized_expression", "array_access",
		"cast_expression", "this", "string_literal", "text_block", "class_literal",
		"array_creation_expression", "instanceof_expression", "ternary_expression",
		"binary_expression", "unary_expression", "method_reference", "lambda_expression",
		"decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal",
		"character_literal", "true", "false", "null_literal":
		return true
	}
	return false
}

// expr walks an expression and returns its static type where it can tell.
func (w *work) expr(n *sitter.Node, use usage) valueType {
	if n == nil {
		return valueType{}
	}
	switch n.Type() {
	case "identifier":
		return w.name(n, use)
	case "field_access":
		return w.fieldAccess(n, use)
	case "method_invocation":
		return w.invocation(n)
	case "object_creation_expression":
		return w.creation(n)
	case "assignment_expression":
		t := w.expr(n.ChildByFieldName("left"), useAssign)
		w.expr(n.ChildByFieldName("right"), useRead)
		return t
	case "update_expression":
		return w.update(n)
	case "parenthesized_expression":
		if n.NamedChildCount() == 0 {
			return valueType{}
		}
		return w.expr(n.NamedChild(0), useRead)
	case "array_access":
		t := w.expr(n.ChildByFieldName("array"), useRead)
		w.expr(n.ChildByFieldName("index"), useRead)
		if t.dims == 0 {
			return valueType{}
		}
		t.dims--
		return t
	case "cast_expression":
		w.expr(n.ChildByFieldName("value"), useRead)
		return w.typeOfNode(n.ChildByFieldName("type"))
	case "this":
		c := w.current().class
		return valueType{decl: c, name: c.CanonicalText()}
	case "string_literal", "text_block":
		return stringType
	case "class_literal":
		w.onClassLiteral(n)
		return valueType{name: "java.lang.Class"}
	case "array_creation_expression":
		return w.arrayCreation(n)
	case "instanceof_expression":
		w.expr(n.ChildByFieldName("left"), useRead)
		if name := n.ChildByFieldName("name"); name != nil {
			w.declare(w.text(name), w.typeOfNode(n.ChildByFieldName("right")))
		}
		if p := n.ChildByFieldName("pattern"); p != nil {
			w.pattern(p)
		}
		return primitiveType("boolean")
	case "ternary_expression":
		w.expr(n.ChildByFieldName("condition"), useRead)
		t := w.expr(n.ChildByFieldName("consequence"), useRead)
		w.expr(n.ChildByFieldName("alternative"), useRead)
		return t
	case "binary_expression":
		return w.binary(n)
	case "unary_expression":
		return w.expr(n.ChildByFieldName("operand"), useRead)
	case "method_reference":
		w.methodReference(n)
		return valueType{}
	case "lambda_expression":
		w.scoped(func() { w.lambda(n) })
		return valueType{}
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(strings.ToLower(w.text(n)), "l") {
			return primitiveType("long")
		}
		return primitiveType("int")
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if strings.HasSuffix(strings.ToLower(w.text(n)), "f") {
			return primitiveType("float")
		}
		return primitiveType("double")
	case "character_literal":
		return primitiveType("char")
	case "true", "false":
		return primitiveType("boolean")
	case "null_literal":
		return valueType{}
	default:
		w.walkChildren(n)
		return valueType{}
	}
}

func (w *work) update(n *sitter.Node) valueType {
	if n.NamedChildCount() == 0 || n.ChildCount() < 2 {
		w.walkChildren(n)
		return valueType{}
	}
	operand := n.NamedChild(0)
	prefix := n.Child(0).Type()
	postfix := n.Child(int(n.ChildCount()) - 1).Type()

	use := useRead
	switch {
	case prefix == "++":
		use = usePreIncrement
	case prefix == "--":
		use = usePreDecrement
	case postfix == "++":
		use = usePostIncrement
	case postfix == "--":
		use = usePostDecrement
	}
	return w.expr(operand, use)
}

func (w *work) binary(n *sitter.Node) valueType {
	left := w.expr(n.ChildByFieldName("left"), useRead)
	right := w.expr(n.ChildByFieldName("right"), useRead)
	switch w.text(n.ChildByFieldName("operator")) {
	case "+":
		if left == stringType || right == stringType {
			return stringType
		}
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return primitiveType("boolean")
	}
	return left
}

func (w *work) arrayCreation(n *sitter.Node) valueType {
	t := w.typeOfNode(n.ChildByFieldName("type"))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dimensions_expr":
			t.dims++
			w.walkChildren(child)
		case "dimensions":
			t.dims += javaast.CountDims(child, w.target.Unit.Source)
		case "array_initializer":
			w.walkChildren(child)
		}
	}
	return t
}

func (w *work) localVariables(n *sitter.Node) {
	base := javaast.TypeRefFromNode(n.ChildByFieldName("type"), w.target.Unit.Source)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		var t valueType
		if value := decl.ChildByFieldName("value"); value != nil {
			t = w.expr(value, useRead)
		}
		if base.Name != "var" {
			ref := base
			ref.Dims += javaast.CountDims(decl.ChildByFieldName("dimensions"), w.target.Unit.Source)
			t = w.resolveRef(ref, w.current().class, w.current().method)
		}
		w.declare(w.text(decl.ChildByFieldName("name")), t)
	}
}

func (w *work) enhancedFor(n *sitter.Node) {
	iterable := w.expr(n.ChildByFieldName("value"), useRead)
	var t valueType
	if typeNode := n.ChildByFieldName("type"); typeNode != nil && w.text(typeNode) != "var" {
		t = w.typeOfNode(typeNode)
	} else if iterable.dims > 0 {
		t = iterable
		t.dims--
	}
	w.declare(w.text(n.ChildByFieldName("name")), t)
	w.walk(n.ChildByFieldName("body"))
}

func (w *work) catchClause(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "catch_formal_parameter" {
			continue
		}
		var t valueType
		for k := 0; k < int(child.NamedChildCount()); k++ {
			if part := child.NamedChild(k); part.Type() == "catch_type" && part.NamedChildCount() > 0 {
				t = w.typeOfNode(part.NamedChild(0))
			}
		}
		w.declare(w.text(child.ChildByFieldName("name")), t)
	}
	w.walk(n.ChildByFieldName("body"))
}

func (w *work) tryWithResources(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "resource_specification" {
			w.walk(child)
			continue
		}
		for k := 0; k < int(child.NamedChildCount()); k++ {
			res := child.NamedChild(k)
			if res.Type() != "resource" {
				continue
			}
			value := res.ChildByFieldName("value")
			if value == nil {
				w.walkChildren(res)
				continue
			}
			t := w.expr(value, useRead)
			if typeNode := res.ChildByFieldName("type"); typeNode != nil && w.text(typeNode) != "var" {
				t = w.typeOfNode(typeNode)
			}
			w.declare(w.text(res.ChildByFieldName("name")), t)
		}
	}
}

func (w *work) pattern(n *sitter.Node) {
	var t valueType
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch {
		case javaast.IsTypeNode(child.Type()):
			t = w.typeOfNode(child)
		case child.Type() == "identifier":
			w.declare(w.text(child), t)
		default:
			w.pattern(child)
		}
	}
}

func (w *work) lambda(n *sitter.Node) {
	params := n.ChildByFieldName("parameters")
	if params != nil {
		switch params.Type() {
		case "identifier":
			w.declare(w.text(params), valueType{})
		default:
			for i := 0; i < int(params.NamedChildCount()); i++ {
				p := params.NamedChild(i)
				switch p.Type() {
				case "identifier":
					w.declare(w.text(p), valueType{})
				case "formal_parameter":
					w.declare(w.text(p.ChildByFieldName("name")), w.typeOfNode(p.ChildByFieldName("type")))
				}
			}
		}
	}
	w.walk(n.ChildByFieldName("body"))
}

func (w *work) methodReference(n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		return
	}
	target := n.NamedChild(0)
	if javaast.IsTypeNode(target.Type()) || target.Type() == "super" {
		return
	}
	w.qualifier(target)
}

// name handles a simple name in expression position.
func (w *work) name(n *sitter.Node, use usage) valueType {
	el, t, ok := w.lookupVariable(w.text(n))
	if !ok {
		w.reference(element{}, use)
		return valueType{}
	}
	w.reference(el, use)
	return t
}

// lookupVariable finds a local variable or field visible from the current
// position. Locals of a frame shadow the fields of its class, which shadow
// everything in enclosing frames.
func (w *work) lookupVariable(name string) (element, valueType, bool) {
	for i := len(w.frames) - 1; i >= 0; i-- {
		f := w.frames[i]
		for j := len(f.scopes) - 1; j >= 0; j-- {
			if t, ok := f.scopes[j][name]; ok {
				return element{kind: elemLocal, owner: f.class}, t, true
			}
		}
		if fd := w.engine.index.FindField(f.class, name); fd != nil {
			return fieldElement(fd), w.fieldType(fd), true
		}
	}
	for c := w.target.Outer; c != nil; c = c.Outer {
		if fd := w.engine.index.FindField(c, name); fd != nil {
			return fieldElement(fd), w.fieldType(fd), true
		}
	}
	if fd := w.staticImportField(name); fd != nil {
		return fieldElement(fd), w.fieldType(fd), true
	}
	return element{}, valueType{}, false
}

func (w *work) staticImportOwners(name string) []*javaast.ClassDecl {
	var owners []*javaast.ClassDecl
	unit := w.target.Unit
	for _, imp := range unit.Imports {
		if !imp.Static {
			continue
		}
		path := imp.Path
		if !imp.OnDemand {
			if !strings.HasSuffix(imp.Path, "."+name) {
				continue
			}
			path = strings.TrimSuffix(imp.Path, "."+name)
		}
		if t, ok := w.engine.index.ResolveInUnit(path, unit); ok && t.Decl != nil {
			owners = append(owners, t.Decl)
		}
	}
	return owners
}

func (w *work) staticImportField(name string) *javaast.FieldDecl {
	for _, owner := range w.staticImportOwners(name) {
		if fd := w.engine.index.FindField(owner, name); fd != nil {
			return fd
		}
	}
	return nil
}

func (w *work) fieldType(fd *javaast.FieldDecl) valueType {
	return w.resolveRef(fd.Type, fd.Owner, nil)
}

func (w *work) fieldAccess(n *sitter.Node, use usage) valueType {
	object := n.ChildByFieldName("object")
	field := n.ChildByFieldName("field")
	if field == nil {
		w.walkChildren(n)
		return valueType{}
	}
	if field.Type() == "this" {
		return w.qualifier(object)
	}

	var owner valueType
	if object != nil && object.Type() == "super" {
		owner = w.superType(w.current().class)
	} else {
		owner = w.qualifier(object)
	}

	name := w.text(field)
	var el element
	var t valueType
	switch {
	case owner.decl != nil && owner.dims == 0:
		if fd := w.engine.index.FindField(owner.decl, name); fd != nil {
			el = fieldElement(fd)
			t = w.fieldType(fd)
		}
	case owner.dims > 0 && name == "length":
		t = primitiveType("int")
	}
	w.reference(el, use)
	return t
}

// qualifier evaluates the object of a field access, method call or method
// reference. A dotted name that does not start with a variable may name a
// type instead.
func (w *work) qualifier(n *sitter.Node) valueType {
	if n == nil {
		return valueType{}
	}
	if javaast.IsNameChain(n) {
		head := n
		for head.Type() == "field_access" {
			head = head.ChildByFieldName("object")
		}
		if _, _, isVar := w.lookupVariable(w.text(head)); !isVar {
			chain := javaast.NameChainText(n, w.target.Unit.Source)
			if t, ok := w.engine.index.ResolveType(chain, w.current().class); ok {
				w.reference(classElement(t), useRead)
				return valueType{decl: t.Decl, name: t.CanonicalText()}
			}
		}
	}
	return w.expr(n, useRead)
}

func (w *work) superType(c *javaast.ClassDecl) valueType {
	t, ok := w.engine.index.Superclass(c)
	if !ok {
		return valueType{}
	}
	return valueType{decl: t.Decl, name: t.CanonicalText()}
}

func (w *work) invocation(n *sitter.Node) valueType {
	var args []valueType
	if list := n.ChildByFieldName("arguments"); list != nil {
		for i := 0; i < int(list.NamedChildCount()); i++ {
			args = append(args, w.expr(list.NamedChild(i), useRead))
		}
	}

	name := w.text(n.ChildByFieldName("name"))
	object := n.ChildByFieldName("object")
	var candidates []*javaast.MethodDecl
	switch {
	case object == nil:
		candidates = w.lookupMethods(name)
	case object.Type() == "super":
		if st := w.superType(w.current().class); st.decl != nil {
			candidates = w.engine.index.FindMethods(st.decl, name)
		}
	default:
		if ot := w.qualifier(object); ot.decl != nil && ot.dims == 0 {
			candidates = w.engine.index.FindMethods(ot.decl, name)
		}
	}

	m := w.pickOverload(candidates, args)
	if m == nil {
		w.reference(element{}, useRead)
		return valueType{}
	}
	w.reference(methodElement(m), useRead)
	return w.resolveRef(m.Return, m.Owner, m)
}

func (w *work) lookupMethods(name string) []*javaast.MethodDecl {
	for i := len(w.frames) - 1; i >= 0; i-- {
		if ms := w.engine.index.FindMethods(w.frames[i].class, name); len(ms) > 0 {
			return ms
		}
	}
	for c := w.target.Outer; c != nil; c = c.Outer {
		if ms := w.engine.index.FindMethods(c, name); len(ms) > 0 {
			return ms
		}
	}
	for _, owner := range w.staticImportOwners(name) {
		if ms := w.engine.index.FindMethods(owner, name); len(ms) > 0 {
			return ms
		}
	}
	return nil
}

// pickOverload chooses among same-named methods by arity, then by the
// number of argument types that match exactly.
func (w *work) pickOverload(candidates []*javaast.MethodDecl, args []valueType) *javaast.MethodDecl {
	var best *javaast.MethodDecl
	bestScore := -1
	for _, m := range candidates {
		if !arityMatches(m, len(args)) {
			continue
		}
		score := 0
		for i, arg := range args {
			if i >= len(m.Params) || !arg.known() {
				continue
			}
			p := w.resolveRef(m.Params[i].Type, m.Owner, m)
			if p.name == arg.name && p.dims == arg.dims {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

func arityMatches(m *javaast.MethodDecl, n int) bool {
	if len(m.Params) == n {
		return true
	}
	if len(m.Params) > 0 && m.Params[len(m.Params)-1].Varargs {
		return n >= len(m.Params)-1
	}
	return false
}

func (w *work) creation(n *sitter.Node) valueType {
	typeNode := n.ChildByFieldName("type")
	var body *sitter.Node
	// outer.new Inner(): the qualifying expression precedes the type.
	for i := 0; typeNode != nil && i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if javaast.KeyOf(child) == javaast.KeyOf(typeNode) {
			break
		}
		if !javaast.IsTypeNode(child.Type()) && child.Type() != "type_arguments" {
			w.expr(child, useRead)
		}
	}

	t := w.typeOfNode(typeNode)
	w.typeReference(t.decl, w.current().class)

	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "class_body" {
			body = child
		}
	}
	if body != nil {
		w.walkClass(w.target.Unit.ClassAt(body))
	}
	return t
}

func (w *work) typeOfNode(n *sitter.Node) valueType {
	if n == nil {
		return valueType{}
	}
	ref := javaast.TypeRefFromNode(n, w.target.Unit.Source)
	f := w.current()
	return w.resolveRef(ref, f.class, f.method)
}

// resolveRef resolves a declared type as seen from class c and method m.
// Type variables are replaced by their erasure.
func (w *work) resolveRef(t javaast.TypeRef, c *javaast.ClassDecl, m *javaast.MethodDecl) valueType {
	for depth := 0; depth < maxErasureDepth; depth++ {
		if t.IsZero() || t.Name == "var" {
			return valueType{dims: t.Dims}
		}
		if _, ok := javaast.PrimitiveDescriptor(t.Name); ok {
			return valueType{name: t.Name, dims: t.Dims}
		}
		if !strings.Contains(t.Name, ".") {
			if tp, ok := resolve.TypeVariable(t.Name, m, c); ok {
				if tp.Bound.IsZero() {
					return valueType{name: "java.lang.Object", dims: t.Dims}
				}
				bound := tp.Bound
				bound.Dims += t.Dims
				t = bound
				continue
			}
		}
		if rt, ok := w.engine.index.ResolveType(t.Name, c); ok {
			return valueType{decl: rt.Decl, name: rt.CanonicalText(), dims: t.Dims}
		}
		return valueType{dims: t.Dims}
	}
	return valueType{name: "java.lang.Object", dims: t.Dims}
}

// typeReference handles a class named by a new expression or a
// superclass clause. Private member classes of the target without
// constructors take an access index.
func (w *work) typeReference(decl *javaast.ClassDecl, from *javaast.ClassDecl) {
	if decl == nil || decl.Outer != w.target || decl == from {
		return
	}
	if !decl.Modifiers.Has(javaast.Private) {
		return
	}
	if len(decl.Constructors) == 0 {
		w.access.Index(decl)
	}
}

// reference applies the bridge rules to a resolved (or unresolved) name
// used inside the current class.
func (w *work) reference(el element, use usage) {
	exprClass := w.current().class
	if el.owner == exprClass {
		return
	}
	w.registerEnclosing(exprClass)
	switch el.kind {
	case elemField:
		w.fieldBridge(el.field, use)
	case elemMethod:
		w.methodBridge(el.method)
	}
}

// registerEnclosing indexes every class between exprClass and the target.
func (w *work) registerEnclosing(exprClass *javaast.ClassDecl) {
	for p := exprClass.Outer; p != nil && p != w.target; p = p.Outer {
		if !exprClass.Anonymous {
			w.access.Index(exprClass)
		}
		w.access.Index(p)
	}
}

func (w *work) fieldBridge(f *javaast.FieldDecl, use usage) {
	if !f.Modifiers.Has(javaast.Private) {
		return
	}
	static := f.Modifiers.Has(javaast.Static)
	if static && w.consts.isConstant(f) {
		return
	}
	ret := w.enc.descriptor(f.Type, nil, f.Owner)
	params := ""
	if !static {
		params = receiverDescriptor(w.target)
	}
	idx := w.access.Index(f)
	if f.Owner != w.target {
		return
	}
	if use == useAssign {
		params += ret
	}
	w.addBridge(fmt.Sprintf("access$%d%s", idx, bridgeOpcodes[use]), "("+params+")"+ret)
}

func (w *work) methodBridge(m *javaast.MethodDecl) {
	if !m.Modifiers.Has(javaast.Private) || m.Owner != w.target {
		return
	}
	var sig string
	if m.Modifiers.Has(javaast.Static) {
		sig = w.enc.methodDescriptor(m)
	} else {
		sig = w.enc.bridgeDescriptor(m, receiverDescriptor(w.target))
	}
	idx := w.access.Index(m)
	w.addBridge(fmt.Sprintf("access$%d00", idx), sig)
}

func (w *work) onAssert() {
	if w.sawAssert {
		return
	}
	w.sawAssert = true
	w.addField(assertionsDisabledField)
	w.classLiteralSynthetics(0, w.target.CanonicalText(), false)
	if !w.b.hasStaticInitializer() {
		w.b.markStaticInitializer()
		w.engine.logger.Debug("synthetic static initializer", "class", w.target.Binary)
	}
}

func (w *work) onClassLiteral(n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		return
	}
	ref := javaast.TypeRefFromNode(n.NamedChild(0), w.target.Unit.Source)
	if ref.IsZero() || ref.IsPrimitive() {
		return
	}
	if letter, ok := javaast.PrimitiveDescriptor(ref.Name); ok {
		w.classLiteralSynthetics(ref.Dims, letter, true)
		return
	}
	text := ref.Name
	if t, ok := w.engine.index.ResolveType(ref.Name, w.current().class); ok {
		text = t.CanonicalText()
	}
	w.classLiteralSynthetics(ref.Dims, text, false)
}

// classLiteralSynthetics adds the class$ helper and the static field that
// caches the Class object of a literal.
func (w *work) classLiteralSynthetics(dims int, component string, primitive bool) {
	defer func() { w.sawClassLiteral = true }()
	if w.engine.opts.Target >= TargetLdcClassLiterals {
		return
	}
	if !w.sawClassLiteral {
		w.addMethod(classAccessMethod)
	}

	var sb strings.Builder
	if dims > 0 {
		sb.WriteString("array")
		sb.WriteString(strings.Repeat("$", dims))
	} else {
		sb.WriteString("class$")
	}
	if primitive {
		sb.WriteString(component)
	} else {
		sb.WriteString(strings.ReplaceAll(component, ".", "$"))
	}
	w.addField(MemberSignature{Name: sb.String(), Modifiers: 0x8, Signature: "Ljava/lang/Class;"})
}

func (w *work) addBridge(name, signature string) {
	if w.engine.opts.Target >= TargetNestmates {
		return
	}
	w.addMethod(MemberSignature{Name: name, Modifiers: 0x8, Signature: signature})
}

func (w *work) addMethod(s MemberSignature) {
	if w.b.methods.add(s) {
		w.engine.logger.Debug("synthetic method", "class", w.target.Binary, "name", s.Name, "signature", s.Signature)
	}
}

func (w *work) addField(s MemberSignature) {
	if w.b.fields.add(s) {
		w.engine.logger.Debug("synthetic field", "class", w.target.Binary, "name", s.Name, "signature", s.Signature)
	}
}
