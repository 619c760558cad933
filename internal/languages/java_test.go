package languages

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/serialver-dev/serialver/internal/javaast"
)

func parseFixture(t *testing.T, name string) *javaast.CompilationUnit {
	t.Helper()
	path := filepath.Join("..", "..", "fixtures", "java", name)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}
	unit, err := NewJavaParser().Parse(context.Background(), name, content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	t.Cleanup(unit.Close)
	if unit.HasError {
		t.Fatalf("fixture %s has syntax errors", name)
	}
	return unit
}

func TestJavaParserHeader(t *testing.T) {
	unit := parseFixture(t, "EdgeCases.java")

	if unit.Package != "fixtures.edge" {
		t.Fatalf("expected package fixtures.edge, got %q", unit.Package)
	}
	want := []javaast.Import{
		{Path: "java.io.Serializable"},
		{Path: "java.util", OnDemand: true},
		{Path: "java.lang.Math.max", Static: true},
	}
	if !reflect.DeepEqual(unit.Imports, want) {
		t.Fatalf("expected imports %+v, got %+v", want, unit.Imports)
	}

	var binaries []string
	for _, c := range unit.AllClasses() {
		binaries = append(binaries, c.Binary)
	}
	wantBinaries := []string{
		"fixtures.edge.EdgeCases",
		"fixtures.edge.EdgeCases$Visitor",
		"fixtures.edge.EdgeCases$Mode",
		"fixtures.edge.EdgeCases$Pair",
		"fixtures.edge.EdgeCases$Marker",
	}
	if !reflect.DeepEqual(binaries, wantBinaries) {
		t.Fatalf("expected classes %v, got %v", wantBinaries, binaries)
	}
}

func TestJavaParserFields(t *testing.T) {
	c := parseFixture(t, "EdgeCases.java").FindClass("EdgeCases")

	if len(c.TypeParams) != 1 || c.TypeParams[0].Name != "T" || c.TypeParams[0].Bound.Name != "Comparable" {
		t.Fatalf("unexpected type params %+v", c.TypeParams)
	}
	if len(c.Interfaces) != 1 || c.Interfaces[0].Name != "Serializable" {
		t.Fatalf("unexpected interfaces %+v", c.Interfaces)
	}

	uid := c.Field("serialVersionUID")
	if uid == nil || uid.Literal == nil || uid.Literal.Text != "0x10L" || !uid.Literal.Negated {
		t.Fatalf("expected negated hex literal, got %+v", uid)
	}
	if uid.Modifiers != javaast.Private|javaast.Static|javaast.Final {
		t.Fatalf("unexpected serialVersionUID modifiers %#x", uid.Modifiers)
	}

	if limit := c.Field("LIMIT"); !limit.Const.Possible || len(limit.Const.Refs) != 0 {
		t.Fatalf("expected LIMIT to be a self-contained constant, got %+v", limit.Const)
	}
	if name := c.Field("NAME"); !name.Const.Possible || !reflect.DeepEqual(name.Const.Refs, []string{"LIMIT"}) {
		t.Fatalf("expected NAME to depend on LIMIT, got %+v", name.Const)
	}
	if lock := c.Field("LOCK"); lock.Const.Possible || !lock.HasInitializer() {
		t.Fatalf("expected LOCK to be a non-constant initializer, got %+v", lock.Const)
	}

	if counts := c.Field("counts"); counts.Type != (javaast.TypeRef{Name: "int", Dims: 2}) {
		t.Fatalf("expected counts to be int[][], got %v", counts.Type)
	}
	if total := c.Field("total"); total.Type != (javaast.TypeRef{Name: "int", Dims: 1}) {
		t.Fatalf("expected total to be int[], got %v", total.Type)
	}
	if last := c.Field("last"); last.Modifiers != javaast.Protected|javaast.Transient || last.Type.Name != "T" {
		t.Fatalf("unexpected field last %+v", last)
	}
}

func TestJavaParserMembersAndLocals(t *testing.T) {
	c := parseFixture(t, "EdgeCases.java").FindClass("EdgeCases")

	if len(c.Initializers) != 1 || !c.Initializers[0].Static {
		t.Fatalf("expected one static initializer, got %+v", c.Initializers)
	}

	if len(c.Constructors) != 1 {
		t.Fatalf("expected one constructor, got %d", len(c.Constructors))
	}
	ctor := c.Constructors[0]
	if ctor.Name != "<init>" || len(ctor.Params) != 1 || !ctor.Params[0].Varargs ||
		ctor.Params[0].Type != (javaast.TypeRef{Name: "String", Dims: 1}) {
		t.Fatalf("unexpected constructor %+v", ctor)
	}

	pick := c.MethodsNamed("pick")
	if len(pick) != 1 || pick[0].Return.Name != "E" || len(pick[0].TypeParams) != 1 ||
		pick[0].TypeParams[0].Bound.Name != "Number" || pick[0].Params[0].Type.Name != "List" {
		t.Fatalf("unexpected pick method %+v", pick)
	}

	if len(c.Locals) != 2 {
		t.Fatalf("expected anonymous and local class, got %d", len(c.Locals))
	}
	anon, helper := c.Locals[0], c.Locals[1]
	if !anon.Anonymous || anon.Binary != "fixtures.edge.EdgeCases$1" || anon.Superclass.Name != "Runnable" {
		t.Fatalf("unexpected anonymous class %+v", anon)
	}
	if !helper.Local || helper.Binary != "fixtures.edge.EdgeCases$1Helper" || helper.Qualified != "" {
		t.Fatalf("unexpected local class %+v", helper)
	}
}

func TestJavaParserImplicitModifiers(t *testing.T) {
	unit := parseFixture(t, "EdgeCases.java")

	visitor := unit.FindClass("Visitor")
	if visitor.Kind != javaast.KindInterface || visitor.Modifiers != javaast.Interface|javaast.Abstract|javaast.Static {
		t.Fatalf("unexpected interface modifiers %#x", visitor.Modifiers)
	}
	if f := visitor.Field("LIMIT"); f.Modifiers != javaast.Public|javaast.Static|javaast.Final {
		t.Fatalf("unexpected interface field modifiers %#x", f.Modifiers)
	}
	if m := visitor.MethodsNamed("visit")[0]; m.Modifiers != javaast.Public|javaast.Abstract {
		t.Fatalf("unexpected abstract method modifiers %#x", m.Modifiers)
	}
	if m := visitor.MethodsNamed("done")[0]; m.Modifiers != javaast.Public {
		t.Fatalf("unexpected default method modifiers %#x", m.Modifiers)
	}

	mode := unit.FindClass("Mode")
	if mode.Kind != javaast.KindEnum || mode.Modifiers.Has(javaast.Final) || !mode.Modifiers.Has(javaast.Static) {
		t.Fatalf("expected a specialized static enum, got %#x", mode.Modifiers)
	}
	if fast := mode.Field("FAST"); fast == nil || fast.Modifiers != javaast.Public|javaast.Static|javaast.Final {
		t.Fatalf("unexpected enum constant %+v", fast)
	}
	if len(mode.Locals) != 1 || mode.Locals[0].Binary != "fixtures.edge.EdgeCases$Mode$1" {
		t.Fatalf("expected SLOW body as Mode$1, got %+v", mode.Locals)
	}

	pair := unit.FindClass("Pair")
	if pair.Kind != javaast.KindRecord || pair.Modifiers != javaast.Final|javaast.Static {
		t.Fatalf("unexpected record modifiers %#x", pair.Modifiers)
	}
	if len(pair.Components) != 2 || pair.Field("right") == nil || pair.Field("right").Modifiers != javaast.Private|javaast.Final {
		t.Fatalf("unexpected record components %+v", pair.Components)
	}

	marker := unit.FindClass("Marker")
	if marker.Kind != javaast.KindAnnotation || len(marker.Methods) != 1 ||
		marker.Methods[0].Modifiers != javaast.Public|javaast.Abstract {
		t.Fatalf("unexpected annotation %+v", marker)
	}
}

func TestJavaParserFlagsSyntaxErrors(t *testing.T) {
	unit, err := NewJavaParser().Parse(context.Background(), "Broken.java", []byte("class Broken { void f( }"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer unit.Close()
	if !unit.HasError {
		t.Fatalf("expected syntax errors to be flagged")
	}
}
