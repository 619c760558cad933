// Package suid computes the default serialVersionUID of Java classes from
// their source declarations, including the members a compiler synthesizes.
package suid

import (
	"fmt"
	"log/slog"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/resolve"
)

// EngineVersion is bumped whenever identifiers computed for unchanged
// sources may differ.
const EngineVersion = "1"

// Identifier sentinels.
const (
	AbsentClass     int64 = -1
	NotSerializable int64 = 0
)

// Target release thresholds for the synthetic member profile.
const (
	// TargetLegacy predicts the synthetics of javac releases before 5.
	TargetLegacy = 0
	// TargetLdcClassLiterals and later load class literals directly, so no
	// class$ helper or cache fields are generated.
	TargetLdcClassLiterals = 5
	// TargetNestmates and later reach private members of nest mates
	// without access$ bridges.
	TargetNestmates = 11
)

// Options tunes an Engine.
type Options struct {
	Target int
}

// Engine computes identifiers for classes of one resolution scope. It holds
// no per-computation state and may be shared between goroutines as long as
// each class's parse tree is only touched by one goroutine at a time.
type Engine struct {
	index  *resolve.Index
	opts   Options
	logger *slog.Logger
}

// New returns an engine resolving names through index. A nil index means an
// empty scope; a nil logger means slog.Default().
func New(index *resolve.Index, opts Options, logger *slog.Logger) *Engine {
	if index == nil {
		index = resolve.NewIndex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{index: index, opts: opts, logger: logger}
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// work is the state of one computation.
type work struct {
	engine *Engine
	enc    typeEncoder
	consts *constants
	target *javaast.ClassDecl
	b      *builder
	access *AccessIndexTable
	frames []*frame

	sawAssert       bool
	sawClassLiteral bool
}

// ComputeIdentifier returns the default serialVersionUID of c: AbsentClass
// for nil, NotSerializable when c is not serializable (or is an enum or a
// record), otherwise the folded digest of its descriptor.
func (e *Engine) ComputeIdentifier(c *javaast.ClassDecl) (int64, error) {
	if c == nil {
		return AbsentClass, nil
	}
	if c.Kind == javaast.KindEnum || c.Kind == javaast.KindRecord || !e.index.IsSerializable(c) {
		return NotSerializable, nil
	}
	d := e.Describe(c)
	id, err := d.Identifier()
	if err != nil {
		return 0, fmt.Errorf("failed to compute identifier of %s: %w", c.Binary, err)
	}
	e.logger.Debug("computed identifier", "class", c.Binary, "value", id,
		"fields", len(d.Fields), "constructors", len(d.Constructors), "methods", len(d.Methods))
	return id, nil
}

// Describe builds the frozen descriptor of c without checking whether c is
// serializable. It returns nil for a nil class.
func (e *Engine) Describe(c *javaast.ClassDecl) *ClassDescriptor {
	if c == nil {
		return nil
	}
	w := &work{
		engine: e,
		enc:    typeEncoder{index: e.index},
		consts: newConstants(e.index),
		target: c,
		b:      newBuilder(c.Binary),
		access: newAccessIndexTable(),
	}
	w.extract()
	w.infer()
	return w.b.freeze()
}

// IsSerializable reports whether c transitively implements java.io.Serializable.
func (e *Engine) IsSerializable(c *javaast.ClassDecl) bool {
	return e.index.IsSerializable(c)
}

// NeedsIdentifier reports whether c is a class that should declare a
// serialVersionUID: a serializable named class that is not an interface,
// annotation, enum or record.
func (e *Engine) NeedsIdentifier(c *javaast.ClassDecl) bool {
	if c == nil || c.Anonymous {
		return false
	}
	switch c.Kind {
	case javaast.KindInterface, javaast.KindAnnotation, javaast.KindEnum, javaast.KindRecord:
		return false
	}
	return e.index.IsSerializable(c)
}
