package suid

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/languages"
	"github.com/serialver-dev/serialver/internal/resolve"
)

func parseUnit(t *testing.T, path, src string) *javaast.CompilationUnit {
	t.Helper()
	unit, err := languages.NewJavaParser().Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	require.False(t, unit.HasError, "fixture %s has syntax errors", path)
	t.Cleanup(unit.Close)
	return unit
}

func newEngine(opts Options, units ...*javaast.CompilationUnit) *Engine {
	return New(resolve.NewIndex(units...), opts, nil)
}

func classOf(t *testing.T, unit *javaast.CompilationUnit, name string) *javaast.ClassDecl {
	t.Helper()
	c := unit.FindClass(name)
	require.NotNil(t, c, "class %s not found", name)
	return c
}

func describe(t *testing.T, opts Options, src, name string) *ClassDescriptor {
	t.Helper()
	unit := parseUnit(t, "Test.java", src)
	return newEngine(opts, unit).Describe(classOf(t, unit, name))
}

func compute(t *testing.T, src, name string) int64 {
	t.Helper()
	unit := parseUnit(t, "Test.java", src)
	id, err := newEngine(Options{}, unit).ComputeIdentifier(classOf(t, unit, name))
	require.NoError(t, err)
	return id
}

func names(sigs []MemberSignature) []string {
	out := make([]string, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, s.Name)
	}
	return out
}

// javaStream mimics DataOutputStream for ASCII strings.
type javaStream struct{ bytes.Buffer }

func (s *javaStream) utf(v string) {
	_ = binary.Write(&s.Buffer, binary.BigEndian, uint16(len(v)))
	s.WriteString(v)
}

func (s *javaStream) int(v int32) {
	_ = binary.Write(&s.Buffer, binary.BigEndian, v)
}

func TestComputeIdentifierSentinels(t *testing.T) {
	unit := parseUnit(t, "Plain.java", `
public class Plain {}
enum Color implements java.io.Serializable { RED }
record Point(int x, int y) implements java.io.Serializable {}
`)
	e := newEngine(Options{}, unit)

	id, err := e.ComputeIdentifier(nil)
	require.NoError(t, err)
	assert.Equal(t, AbsentClass, id)

	for _, name := range []string{"Plain", "Color", "Point"} {
		id, err := e.ComputeIdentifier(classOf(t, unit, name))
		require.NoError(t, err)
		assert.Equal(t, NotSerializable, id, name)
	}
}

func TestMinimalClassByteStream(t *testing.T) {
	d := describe(t, Options{}, `public class A implements java.io.Serializable {}`, "A")

	var want javaStream
	want.utf("A")
	want.int(0x1)
	want.utf("java.io.Serializable")
	want.utf("<init>")
	want.int(0x1)
	want.utf("()V")

	got, err := d.Bytes()
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)

	sum := sha1.Sum(want.Bytes())
	wantID := int64(binary.LittleEndian.Uint64(sum[:8]))
	id, err := d.Identifier()
	require.NoError(t, err)
	assert.Equal(t, wantID, id)
	assert.NotZero(t, id)

	assert.Equal(t, id, compute(t, `public class A implements java.io.Serializable {}`, "A"))
}

func TestDeterministicAndOrderIndependent(t *testing.T) {
	first := `
package demo;
import java.io.Serializable;
import java.util.List;
public class Order implements Serializable {
    protected int count;
    public List<String> items;
    public Order() {}
    Order(int count) { this.count = count; }
    public int count() { return count; }
    public void add(String item) { items.add(item); }
}`
	second := `
package demo;
import java.io.Serializable;
import java.util.List;
public class Order implements Serializable {
    public void add(String item) { items.add(item); }
    public int count() { return count; }
    Order(int count) { this.count = count; }
    public Order() {}
    public List<String> items;
    protected int count;
}`
	a := compute(t, first, "Order")
	assert.Equal(t, a, compute(t, first, "Order"))
	assert.Equal(t, a, compute(t, second, "Order"))
}

func TestAssertAddsSynthetics(t *testing.T) {
	plain := `
public class Checked implements java.io.Serializable {
    public void check(int x) { if (x < 0) throw new IllegalArgumentException(); }
}`
	asserted := `
public class Checked implements java.io.Serializable {
    public void check(int x) { assert x >= 0; assert x < 10; }
}`
	assert.NotEqual(t, compute(t, plain, "Checked"), compute(t, asserted, "Checked"))

	d := describe(t, Options{}, asserted, "Checked")
	assert.Contains(t, d.Fields, assertionsDisabledField)
	assert.Contains(t, d.Fields, MemberSignature{Name: "class$Checked", Modifiers: 0x8, Signature: "Ljava/lang/Class;"})
	assert.Contains(t, d.Methods, classAccessMethod)
	assert.Equal(t, []MemberSignature{staticInitializer}, d.StaticInitializers)
	assert.Len(t, d.Fields, 2)

	d = describe(t, Options{Target: 8}, asserted, "Checked")
	assert.Equal(t, []string{"$assertionsDisabled"}, names(d.Fields))
	assert.NotContains(t, d.Methods, classAccessMethod)
	assert.Len(t, d.StaticInitializers, 1)
}

func TestClassLiteralFieldNames(t *testing.T) {
	src := `
package lit;
public class Lit implements java.io.Serializable {
    public Object[] types() {
        return new Object[] { String.class, int[].class, java.util.Map.Entry.class, String[][].class, int.class, Lit.class };
    }
}`
	d := describe(t, Options{}, src, "Lit")
	assert.Equal(t, []string{
		"array$$java$lang$String",
		"array$I",
		"class$java$lang$String",
		"class$java$util$Map$Entry",
		"class$lit$Lit",
	}, names(d.Fields))
	assert.Contains(t, d.Methods, classAccessMethod)
	assert.Empty(t, d.StaticInitializers)

	d = describe(t, Options{Target: TargetLdcClassLiterals}, src, "Lit")
	assert.Empty(t, d.Fields)
	assert.NotContains(t, d.Methods, classAccessMethod)
}

func TestFieldInclusionRule(t *testing.T) {
	d := describe(t, Options{}, `
public class Fields implements java.io.Serializable {
    private int kept;
    private static int droppedStatic;
    private transient int droppedTransient;
    protected transient int keptTransient;
    public static final long LIMIT = 10L;
}`, "Fields")

	assert.Equal(t, []MemberSignature{
		{Name: "LIMIT", Modifiers: 0x19, Signature: "J"},
		{Name: "kept", Modifiers: 0x2, Signature: "I"},
		{Name: "keptTransient", Modifiers: 0x84, Signature: "I"},
	}, d.Fields)
}

func TestStaticInitializerDetection(t *testing.T) {
	tests := []struct {
		name   string
		member string
		want   bool
	}{
		{"constant primitive", "static final int A = 1 + 2;", false},
		{"constant string", `static final String S = "a" + 1;`, false},
		{"constant chain", "static final int A = 1; static final int B = A * 2;", false},
		{"boxed constant", "static final Integer B = 1;", true},
		{"non final", "static int C = 2;", true},
		{"method call", "static final int D = Integer.parseInt(\"1\");", true},
		{"no initializer", "static int E;", false},
		{"explicit block", "static int F; static { F = 3; }", true},
		{"instance field", "final Object o = new Object();", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := describe(t, Options{}, "public class S implements java.io.Serializable { "+tt.member+" }", "S")
			assert.Equal(t, tt.want, len(d.StaticInitializers) == 1)
		})
	}
}

func TestConstructorsAndModifiers(t *testing.T) {
	d := describe(t, Options{}, `
package m;
abstract class Shape implements java.io.Serializable, Comparable<Shape>, Runnable {
    private Shape(String s) {}
    protected Shape(int x, double[] y) {}
    Shape() {}
    public abstract void run();
    public final synchronized int compareTo(Shape other) { return 0; }
    private void hidden() {}
    static native long stamp();
}`, "Shape")

	assert.Equal(t, int32(0x400), d.Modifiers)
	assert.Equal(t, []string{"java.io.Serializable", "java.lang.Comparable", "java.lang.Runnable"}, d.Interfaces)
	assert.Equal(t, []MemberSignature{
		{Name: "<init>", Modifiers: 0x0, Signature: "()V"},
		{Name: "<init>", Modifiers: 0x4, Signature: "(I[D)V"},
	}, d.Constructors)
	assert.Equal(t, []MemberSignature{
		{Name: "compareTo", Modifiers: 0x31, Signature: "(Lm/Shape;)I"},
		{Name: "run", Modifiers: 0x401, Signature: "()V"},
		{Name: "stamp", Modifiers: 0x108, Signature: "()J"},
	}, d.Methods)
}

func TestInterfaceModifiers(t *testing.T) {
	empty := describe(t, Options{}, `public interface Marker extends java.io.Serializable {}`, "Marker")
	assert.Equal(t, int32(0x201), empty.Modifiers)
	assert.Empty(t, empty.Constructors)

	withMethod := describe(t, Options{}, `public interface Task extends java.io.Serializable { void run(); }`, "Task")
	assert.Equal(t, int32(0x601), withMethod.Modifiers)
	assert.Equal(t, []MemberSignature{{Name: "run", Modifiers: 0x401, Signature: "()V"}}, withMethod.Methods)
}

func TestTypeVariablesErase(t *testing.T) {
	d := describe(t, Options{}, `
import java.util.List;
public class Box<T, N extends Number> implements java.io.Serializable {
    public T value;
    public N number;
    public <E extends Comparable<E>> E max(List<E> items, T[] extra) { return null; }
    public Missing unknown() { return null; }
}`, "Box")

	assert.Equal(t, []MemberSignature{
		{Name: "number", Modifiers: 0x1, Signature: "Ljava/lang/Number;"},
		{Name: "value", Modifiers: 0x1, Signature: "Ljava/lang/Object;"},
	}, d.Fields)
	assert.Contains(t, d.Methods, MemberSignature{Name: "max", Modifiers: 0x1,
		Signature: "(Ljava/util/List;[Ljava/lang/Object;)Ljava/lang/Comparable;"})
	assert.Contains(t, d.Methods, MemberSignature{Name: "unknown", Modifiers: 0x1, Signature: "()Ljava/lang/Object;"})
}

func TestFieldBridgeNumbering(t *testing.T) {
	src := `
package p;
public class Outer implements java.io.Serializable {
    private int a;
    private static String b = "x" + System.currentTimeMillis();
    private static final int LIMIT = 3;
    class First { int read() { return a + LIMIT; } }
    class Second { void write() { b = "y"; a++; --a; Outer.this.a += 2; } }
    class Third { void bump() { ++a; a--; } }
}`
	unit := parseUnit(t, "Outer.java", src)
	e := newEngine(Options{}, unit)
	outer := classOf(t, unit, "Outer")

	d := e.Describe(outer)
	assert.Equal(t, []MemberSignature{
		{Name: "access$000", Modifiers: 0x8, Signature: "(Lp/Outer;)I"},
		{Name: "access$002", Modifiers: 0x8, Signature: "(Lp/Outer;I)I"},
		{Name: "access$004", Modifiers: 0x8, Signature: "(Lp/Outer;)I"},
		{Name: "access$006", Modifiers: 0x8, Signature: "(Lp/Outer;)I"},
		{Name: "access$008", Modifiers: 0x8, Signature: "(Lp/Outer;)I"},
		{Name: "access$010", Modifiers: 0x8, Signature: "(Lp/Outer;)I"},
		{Name: "access$102", Modifiers: 0x8, Signature: "(Ljava/lang/String;)Ljava/lang/String;"},
	}, d.Methods)
	assert.Len(t, d.StaticInitializers, 1)

	first, err := e.ComputeIdentifier(outer)
	require.NoError(t, err)
	again, err := e.ComputeIdentifier(outer)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestMethodBridges(t *testing.T) {
	src := `
public class P implements java.io.Serializable {
    private static int twice(int x) { return 2 * x; }
    private String name(int i, long j) { return ""; }
    Runnable r = new Runnable() {
        public void run() { twice(1); name(1, 2L); }
    };
}`
	d := describe(t, Options{}, src, "P")
	assert.Equal(t, []MemberSignature{
		{Name: "access$000", Modifiers: 0x8, Signature: "(I)I"},
		{Name: "access$100", Modifiers: 0x8, Signature: "(LP;IJ)Ljava/lang/String;"},
	}, d.Methods)
	assert.Equal(t, []MemberSignature{{Name: "r", Modifiers: 0x0, Signature: "Ljava/lang/Runnable;"}}, d.Fields)

	d = describe(t, Options{Target: TargetNestmates}, src, "P")
	assert.Empty(t, d.Methods)
}

func TestEnclosingClassesTakeIndices(t *testing.T) {
	d := describe(t, Options{}, `
public class Deep implements java.io.Serializable {
    private int x;
    class A { class B { int get() { return x; } } }
}`, "Deep")
	assert.Equal(t, []string{"access$200"}, names(d.Methods))

	d = describe(t, Options{}, `
public class N implements java.io.Serializable {
    private int x;
    private static class Helper {}
    Object make() { return new Helper(); }
    class Inner { int get() { return x; } }
}`, "N")
	assert.Equal(t, []string{"access$100", "make"}, names(d.Methods))
}

func TestLocalsShadowFields(t *testing.T) {
	d := describe(t, Options{}, `
public class Shadow implements java.io.Serializable {
    private int x;
    Runnable r = new Runnable() {
        public void run() { int x = 1; x++; }
    };
}`, "Shadow")
	assert.Empty(t, d.Methods)
}

func TestDescribeNil(t *testing.T) {
	assert.Nil(t, newEngine(Options{}).Describe(nil))
}

func TestPlatformErrorSubclass(t *testing.T) {
	src := `
package p;
public class Fatal extends InternalError {
    public void handle(NoSuchMethodError e, SecurityManager sm) {}
}`
	assert.NotEqual(t, NotSerializable, compute(t, src, "Fatal"))

	d := describe(t, Options{}, src, "Fatal")
	assert.Equal(t, []MemberSignature{{Name: "handle", Modifiers: 0x1,
		Signature: "(Ljava/lang/NoSuchMethodError;Ljava/lang/SecurityManager;)V"}}, d.Methods)
}

func TestInnerClassOuterInstanceIsNotPredicted(t *testing.T) {
	d := describe(t, Options{}, `
public class Outer {
    public class Inner implements java.io.Serializable {}
}`, "Inner")
	assert.Equal(t, []MemberSignature{{Name: "<init>", Modifiers: 0x1, Signature: "()V"}}, d.Constructors)
	assert.Empty(t, d.Fields)
}
