package suid

import (
	"strings"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/resolve"
)

const objectDescriptor = "Ljava/lang/Object;"

// maxErasureDepth bounds type variable chains such as <A extends B, B extends A>.
const maxErasureDepth = 8

// typeEncoder renders source types as JVM descriptors.
type typeEncoder struct {
	index *resolve.Index
}

// descriptor encodes t as written in class c (and method m, for method type
// variables). Unresolvable class types encode as java.lang.Object.
func (e typeEncoder) descriptor(t javaast.TypeRef, m *javaast.MethodDecl, c *javaast.ClassDecl) string {
	return e.descriptorDepth(t, m, c, 0)
}

func (e typeEncoder) descriptorDepth(t javaast.TypeRef, m *javaast.MethodDecl, c *javaast.ClassDecl, depth int) string {
	var sb strings.Builder
	for i := 0; i < t.Dims; i++ {
		sb.WriteByte('[')
	}
	sb.WriteString(e.elementDescriptor(t.Name, m, c, depth))
	return sb.String()
}

func (e typeEncoder) elementDescriptor(name string, m *javaast.MethodDecl, c *javaast.ClassDecl, depth int) string {
	if d, ok := javaast.PrimitiveDescriptor(name); ok {
		return d
	}
	if name == "" || name == "?" {
		return objectDescriptor
	}
	if !strings.Contains(name, ".") {
		if tp, ok := resolve.TypeVariable(name, m, c); ok {
			if tp.Bound.IsZero() || depth >= maxErasureDepth {
				return objectDescriptor
			}
			return e.descriptorDepth(tp.Bound, m, c, depth+1)
		}
	}
	if t, ok := e.index.ResolveType(name, c); ok {
		return "L" + t.Internal() + ";"
	}
	return objectDescriptor
}

// methodDescriptor returns the slash-form descriptor of a method or
// constructor.
func (e typeEncoder) methodDescriptor(m *javaast.MethodDecl) string {
	return e.bridgeDescriptor(m, "")
}

// bridgeDescriptor is methodDescriptor with an optional leading receiver
// parameter.
func (e typeEncoder) bridgeDescriptor(m *javaast.MethodDecl, receiver string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(receiver)
	for _, p := range m.Params {
		sb.WriteString(e.descriptor(p.Type, m, m.Owner))
	}
	sb.WriteByte(')')
	if m.Constructor {
		sb.WriteByte('V')
	} else {
		sb.WriteString(e.descriptor(m.Return, m, m.Owner))
	}
	return sb.String()
}

// receiverDescriptor is the descriptor of a class used as an explicit
// receiver parameter.
func receiverDescriptor(c *javaast.ClassDecl) string {
	return "L" + strings.ReplaceAll(c.Binary, ".", "/") + ";"
}
