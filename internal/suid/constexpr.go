package suid

import (
	"regexp"
	"strings"

	"github.com/serialver-dev/serialver/internal/javaast"
	"github.com/serialver-dev/serialver/internal/resolve"
)

var constantName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// constants decides whether fields are constant variables: final fields of
// primitive or String type whose initializer is a constant expression.
type constants struct {
	index *resolve.Index
	memo  map[*javaast.FieldDecl]bool
}

func newConstants(index *resolve.Index) *constants {
	return &constants{index: index, memo: make(map[*javaast.FieldDecl]bool)}
}

func (k *constants) isConstant(f *javaast.FieldDecl) bool {
	return k.check(f, map[*javaast.FieldDecl]bool{})
}

func (k *constants) check(f *javaast.FieldDecl, visiting map[*javaast.FieldDecl]bool) bool {
	if f == nil {
		return false
	}
	if v, ok := k.memo[f]; ok {
		return v
	}
	if visiting[f] {
		return false
	}
	visiting[f] = true
	defer delete(visiting, f)

	ok := f.Modifiers.Has(javaast.Final) &&
		(f.Type.IsPrimitive() || f.Type.IsString()) &&
		f.Init != nil &&
		f.Const.Possible
	if ok {
		for _, ref := range f.Const.Refs {
			if !k.refIsConstant(ref, f.Owner, visiting) {
				ok = false
				break
			}
		}
	}
	k.memo[f] = ok
	return ok
}

func (k *constants) refIsConstant(ref string, from *javaast.ClassDecl, visiting map[*javaast.FieldDecl]bool) bool {
	dot := strings.LastIndex(ref, ".")
	if dot < 0 {
		return k.simpleIsConstant(ref, from, visiting)
	}
	qualifier, name := ref[:dot], ref[dot+1:]
	t, ok := k.index.ResolveType(qualifier, from)
	if !ok {
		return false
	}
	if t.Decl == nil {
		return constantName.MatchString(name)
	}
	return k.check(k.index.FindField(t.Decl, name), visiting)
}

func (k *constants) simpleIsConstant(name string, from *javaast.ClassDecl, visiting map[*javaast.FieldDecl]bool) bool {
	for c := from; c != nil; c = c.Outer {
		if f := k.index.FindField(c, name); f != nil {
			return k.check(f, visiting)
		}
	}
	if from == nil || from.Unit == nil {
		return false
	}
	for _, imp := range from.Unit.Imports {
		if !imp.Static {
			continue
		}
		owner := imp.Path
		if !imp.OnDemand {
			if !strings.HasSuffix(imp.Path, "."+name) {
				continue
			}
			owner = strings.TrimSuffix(imp.Path, "."+name)
		}
		t, ok := k.index.ResolveInUnit(owner, from.Unit)
		if !ok {
			continue
		}
		if t.Decl == nil {
			if !imp.OnDemand {
				return constantName.MatchString(name)
			}
			continue
		}
		if f := k.index.FindField(t.Decl, name); f != nil {
			return k.check(f, visiting)
		}
	}
	// Inherited from a type outside the scanned sources.
	return constantName.MatchString(name)
}

// needsStaticInitializer reports whether f is a static field whose
// initializer has to run in <clinit>.
func (k *constants) needsStaticInitializer(f *javaast.FieldDecl) bool {
	if !f.Modifiers.Has(javaast.Static) || f.Init == nil {
		return false
	}
	return !k.isConstant(f)
}
