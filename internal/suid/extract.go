package suid

import (
	"github.com/serialver-dev/serialver/internal/javaast"
)

// Modifier masks applied before hashing, as in java.io.ObjectStreamClass.
const (
	classModifierMask = int32(javaast.Public | javaast.Final | javaast.Interface | javaast.Abstract)

	fieldModifierMask = int32(javaast.Public | javaast.Private | javaast.Protected | javaast.Static |
		javaast.Final | javaast.Volatile | javaast.Transient)

	methodModifierMask = int32(javaast.Public | javaast.Private | javaast.Protected | javaast.Static |
		javaast.Final | javaast.Synchronized | javaast.Native | javaast.Abstract | javaast.Strict)
)

// extract builds the descriptor of c from its declarations alone.
func (w *work) extract() {
	c := w.target
	b := w.b

	b.modifiers = int32(c.Modifiers) & classModifierMask
	b.isInterface = c.IsInterface()
	for _, iface := range w.engine.index.Interfaces(c) {
		b.interfaces = append(b.interfaces, iface.Binary)
	}

	for _, m := range c.Methods {
		if m.Modifiers.Has(javaast.Private) {
			continue
		}
		b.methods.add(MemberSignature{
			Name:      m.Name,
			Modifiers: int32(m.Modifiers) & methodModifierMask,
			Signature: w.enc.methodDescriptor(m),
		})
	}

	for _, f := range c.Fields {
		if f.Modifiers.Has(javaast.Private) && (f.Modifiers.Has(javaast.Static) || f.Modifiers.Has(javaast.Transient)) {
			continue
		}
		b.fields.add(MemberSignature{
			Name:      f.Name,
			Modifiers: int32(f.Modifiers) & fieldModifierMask,
			Signature: w.enc.descriptor(f.Type, nil, c),
		})
	}

	for _, init := range c.Initializers {
		if init.Static {
			b.markStaticInitializer()
			break
		}
	}
	if !b.hasStaticInitializer() {
		for _, f := range c.Fields {
			if w.consts.needsStaticInitializer(f) {
				b.markStaticInitializer()
				break
			}
		}
	}

	if len(c.Constructors) == 0 && !c.IsInterface() {
		b.constructors.add(defaultConstructor(c.Modifiers.Has(javaast.Public)))
	}
	for _, ctor := range c.Constructors {
		if ctor.Modifiers.Has(javaast.Private) {
			continue
		}
		b.constructors.add(MemberSignature{
			Name:      "<init>",
			Modifiers: int32(ctor.Modifiers) & methodModifierMask,
			Signature: w.enc.methodDescriptor(ctor),
		})
	}
}
