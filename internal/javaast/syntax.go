package javaast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// TypeRefFromNode converts a tree-sitter type node into a TypeRef.
func TypeRefFromNode(node *sitter.Node, src []byte) TypeRef {
	if node == nil {
		return TypeRef{}
	}
	switch node.Type() {
	case "array_type":
		t := TypeRefFromNode(node.ChildByFieldName("element"), src)
		t.Dims += CountDims(node.ChildByFieldName("dimensions"), src)
		return t
	case "generic_type":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "type_identifier" || child.Type() == "scoped_type_identifier" {
				return TypeRefFromNode(child, src)
			}
		}
		return TypeRef{}
	case "scoped_type_identifier":
		parts := make([]string, 0, 4)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "type_identifier", "identifier":
				parts = append(parts, strings.TrimSpace(child.Content(src)))
			case "scoped_type_identifier", "generic_type":
				parts = append(parts, TypeRefFromNode(child, src).Name)
			}
		}
		return TypeRef{Name: strings.Join(parts, ".")}
	case "annotated_type":
		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			child := node.NamedChild(i)
			if IsTypeNode(child.Type()) {
				return TypeRefFromNode(child, src)
			}
		}
		return TypeRef{}
	default:
		return TypeRef{Name: strings.TrimSpace(node.Content(src))}
	}
}

// IsTypeNode reports whether nodeType is one of the grammar's type kinds.
func IsTypeNode(nodeType string) bool {
	switch nodeType {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type", "annotated_type":
		return true
	}
	return false
}

// CountDims counts the bracket pairs of a dimensions node.
func CountDims(node *sitter.Node, src []byte) int {
	if node == nil {
		return 0
	}
	return strings.Count(node.Content(src), "[")
}

// IsNameChain reports whether n is an identifier or a dotted chain of
// identifiers such as a.b.c.
func IsNameChain(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "identifier":
		return true
	case "field_access":
		object := n.ChildByFieldName("object")
		field := n.ChildByFieldName("field")
		return object != nil && field != nil && field.Type() == "identifier" && IsNameChain(object)
	}
	return false
}

// NameChainText returns the text of a name chain without whitespace.
func NameChainText(n *sitter.Node, src []byte) string {
	return strings.Join(strings.Fields(n.Content(src)), "")
}
