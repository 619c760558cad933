package suid

import (
	"sort"
	"strings"
)

// MemberSignature is one (name, modifiers, descriptor) triple of the class
// descriptor. Values are comparable and ordered by name, then signature.
type MemberSignature struct {
	Name      string `json:"name" yaml:"name"`
	Modifiers int32  `json:"modifiers" yaml:"modifiers"`
	Signature string `json:"signature" yaml:"signature"`
}

// Less orders signatures by name, then by descriptor.
func (s MemberSignature) Less(other MemberSignature) bool {
	if s.Name != other.Name {
		return s.Name < other.Name
	}
	return s.Signature < other.Signature
}

func (s MemberSignature) String() string {
	return s.Name + " " + s.Signature
}

var (
	assertionsDisabledField = MemberSignature{Name: "$assertionsDisabled", Modifiers: 0x18, Signature: "Z"}
	classAccessMethod       = MemberSignature{Name: "class$", Modifiers: 0x8, Signature: "(Ljava/lang/String;)Ljava/lang/Class;"}
	staticInitializer       = MemberSignature{Name: "<clinit>", Modifiers: 0x8, Signature: "()V"}
)

func defaultConstructor(public bool) MemberSignature {
	mods := int32(0)
	if public {
		mods = 1
	}
	return MemberSignature{Name: "<init>", Modifiers: mods, Signature: "()V"}
}

type signatureSet map[MemberSignature]struct{}

// add reports whether s was not already present.
func (set signatureSet) add(s MemberSignature) bool {
	if _, ok := set[s]; ok {
		return false
	}
	set[s] = struct{}{}
	return true
}

func (set signatureSet) sorted() []MemberSignature {
	out := make([]MemberSignature, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sortSignatures(out)
	return out
}

func sortSignatures(sigs []MemberSignature) {
	sort.Slice(sigs, func(i, j int) bool {
		return sigs[i].Less(sigs[j])
	})
}

// ClassDescriptor is the frozen, canonically ordered input of the digest.
type ClassDescriptor struct {
	Name               string            `json:"name" yaml:"name"`
	Modifiers          int32             `json:"modifiers" yaml:"modifiers"`
	Interfaces         []string          `json:"interfaces" yaml:"interfaces"`
	Fields             []MemberSignature `json:"fields" yaml:"fields"`
	StaticInitializers []MemberSignature `json:"static_initializers" yaml:"static_initializers"`
	Constructors       []MemberSignature `json:"constructors" yaml:"constructors"`
	Methods            []MemberSignature `json:"methods" yaml:"methods"`
}

// builder accumulates the descriptor of one class. Members are only ever
// added; freeze produces the sorted descriptor.
type builder struct {
	name         string
	modifiers    int32
	isInterface  bool
	interfaces   []string
	fields       signatureSet
	constructors signatureSet
	methods      signatureSet
	clinit       bool
}

func newBuilder(name string) *builder {
	return &builder{
		name:         name,
		fields:       make(signatureSet),
		constructors: make(signatureSet),
		methods:      make(signatureSet),
	}
}

func (b *builder) markStaticInitializer() {
	b.clinit = true
}

func (b *builder) hasStaticInitializer() bool {
	return b.clinit
}

func (b *builder) freeze() *ClassDescriptor {
	d := &ClassDescriptor{
		Name:         b.name,
		Modifiers:    b.modifiers,
		Interfaces:   append([]string(nil), b.interfaces...),
		Fields:       b.fields.sorted(),
		Constructors: b.constructors.sorted(),
		Methods:      b.methods.sorted(),
	}
	sort.Strings(d.Interfaces)
	if b.clinit {
		d.StaticInitializers = []MemberSignature{staticInitializer}
	} else {
		d.StaticInitializers = []MemberSignature{}
	}
	if b.isInterface {
		d.Modifiers |= int32(0x200)
		if len(d.Methods) == 0 {
			d.Modifiers &^= int32(0x400)
		}
	}
	return d
}

// dotted converts a slash-form descriptor to the form written for methods
// and constructors.
func dotted(signature string) string {
	return strings.ReplaceAll(signature, "/", ".")
}
