package suid

import (
	"bytes"
	"crypto"
	_ "crypto/sha1" // registers crypto.SHA1
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

var (
	// ErrDigestUnavailable is returned when SHA-1 is not linked into the binary.
	ErrDigestUnavailable = errors.New("SHA-1 digest unavailable")
	// ErrUTFTooLong is returned for a string whose modified UTF-8 form exceeds 65535 bytes.
	ErrUTFTooLong = errors.New("encoded string too long")
)

const maxUTFLength = 0xFFFF

// streamWriter writes the big-endian primitives of java.io.DataOutputStream.
// The first error sticks.
type streamWriter struct {
	buf bytes.Buffer
	err error
}

// writeUTF writes a two byte length followed by the modified UTF-8 form of s:
// NUL is written as C0 80 and supplementary characters as surrogate pairs.
func (w *streamWriter) writeUTF(s string) {
	if w.err != nil {
		return
	}
	encoded := make([]byte, 0, len(s)+2)
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			encoded = appendUTF16Unit(encoded, uint16(hi))
			encoded = appendUTF16Unit(encoded, uint16(lo))
			continue
		}
		encoded = appendUTF16Unit(encoded, uint16(r))
	}
	if len(encoded) > maxUTFLength {
		w.err = fmt.Errorf("failed to write %.32q...: %w", s, ErrUTFTooLong)
		return
	}
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(encoded)))
	w.buf.Write(length[:])
	w.buf.Write(encoded)
}

func appendUTF16Unit(dst []byte, c uint16) []byte {
	switch {
	case c >= 0x0001 && c <= 0x007F:
		return append(dst, byte(c))
	case c <= 0x07FF:
		return append(dst, byte(0xC0|(c>>6)&0x1F), byte(0x80|c&0x3F))
	default:
		return append(dst, byte(0xE0|(c>>12)&0x0F), byte(0x80|(c>>6)&0x3F), byte(0x80|c&0x3F))
	}
}

func (w *streamWriter) writeInt(v int32) {
	if w.err != nil {
		return
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *streamWriter) writeMembers(sigs []MemberSignature, dot bool) {
	for _, s := range sigs {
		w.writeUTF(s.Name)
		w.writeInt(s.Modifiers)
		if dot {
			w.writeUTF(dotted(s.Signature))
		} else {
			w.writeUTF(s.Signature)
		}
	}
}

// Bytes returns the canonical stream hashed for the identifier.
func (d *ClassDescriptor) Bytes() ([]byte, error) {
	w := &streamWriter{}
	w.writeUTF(d.Name)
	w.writeInt(d.Modifiers)
	for _, iface := range d.Interfaces {
		w.writeUTF(iface)
	}
	w.writeMembers(d.Fields, false)
	w.writeMembers(d.StaticInitializers, true)
	w.writeMembers(d.Constructors, true)
	w.writeMembers(d.Methods, true)
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// Identifier hashes the descriptor and folds the digest into the 64-bit
// identifier.
func (d *ClassDescriptor) Identifier() (int64, error) {
	if !crypto.SHA1.Available() {
		return 0, ErrDigestUnavailable
	}
	stream, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	h := crypto.SHA1.New()
	h.Write(stream)
	return fold(h.Sum(nil)), nil
}

// fold reads the first eight digest bytes as a little-endian integer.
func fold(sum []byte) int64 {
	var first [8]byte
	copy(first[:], sum)
	return int64(binary.LittleEndian.Uint64(first[:]))
}
