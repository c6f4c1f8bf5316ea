// Package meta implements the Meta/Type Engine (spec.md §4.1): type
// predicates, size/alignment queries, copy and structural equality over the
// Meta type-tag union.
package meta

import (
	"fmt"
	"strings"

	"github.com/aergoio/cvmc/internal/pos"
)

// Type is the Meta type tag. None is exclusively the "unresolved named
// reference" sentinel the parser leaves behind; it must never survive check.
type Type int

const (
	None Type = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Int128
	Uint8
	Uint16
	Uint32
	Uint64
	Fpoint32
	Fpoint64
	String
	Object
	Interface
	Tuple
	Map
	Array
	Void
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Int128:
		return "int128"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Fpoint32:
		return "float32"
	case Fpoint64:
		return "float64"
	case String:
		return "string"
	case Object:
		return "object"
	case Interface:
		return "interface"
	case Tuple:
		return "tuple"
	case Map:
		return "map"
	case Array:
		return "array"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// ALIGN64 rounds n up to the next multiple of 8, the alignment required for
// any storage area holding more than one primitive slot (spec.md §3).
func ALIGN64(n int) int {
	return (n + 7) &^ 7
}

// Meta describes the type of an AST node. Tuple and Map carry their element
// descriptors in Elems; Array carries ArrLen; Object/Interface carry Name.
type Meta struct {
	Type Type
	Name string

	Elems  []*Meta // tuple elements, or [key, value] for Map
	ArrLen int     // Array element count

	Size int
	Addr   int // offset within owning storage area (heap or stack)
	Offset int // return-slot offset, used by RETURN codegen

	Pos pos.Pos
}

// New returns a zero Meta of the given primitive tag, with Size precomputed.
func New(t Type) *Meta {
	m := &Meta{Type: t}
	m.Size = sizeOf(t)
	return m
}

func SetBool(m *Meta)    { *m = Meta{Type: Bool, Size: 1} }
func SetInt32(m *Meta)   { *m = Meta{Type: Int32, Size: 4} }
func SetUint32(m *Meta)  { *m = Meta{Type: Uint32, Size: 4} }
func SetInt64(m *Meta)   { *m = Meta{Type: Int64, Size: 8} }
func SetUint64(m *Meta)  { *m = Meta{Type: Uint64, Size: 8} }
func SetVoid(m *Meta)    { *m = Meta{Type: Void, Size: 0} }
func SetNone(m *Meta, name string) {
	*m = Meta{Type: None, Name: name}
}

// SetObject marks m as a named struct/contract/interface instance type.
// The concrete layout (Size, Elems) is filled in once the referenced
// declaration has itself been checked.
func SetObject(m *Meta, name string) {
	*m = Meta{Type: Object, Name: name}
}

func sizeOf(t Type) int {
	switch t {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Fpoint32, Object, String:
		return 4 // addresses and string handles are i32 pointers into linear memory
	case Int64, Uint64, Fpoint64:
		return 8
	case Int128:
		return 16
	case Void, None:
		return 0
	default:
		return 4 // Array/Map/Interface/Tuple are all represented as i32 pointers
	}
}

// Align returns the natural alignment of m: ALIGN64 for anything that can
// occupy more than one primitive slot, otherwise its own size.
func Align(m *Meta) int {
	if IsTuple(m) || IsArray(m) || (IsObject(m) && m.Size > 8) {
		return 8
	}
	if m.Size >= 8 {
		return 8
	}
	if m.Size == 0 {
		return 1
	}
	return m.Size
}

// Iosz returns the I/O size used when materializing a value into/out of
// persistent storage: the same as Size, except Int128 which is stored as a
// 16-byte little endian blob regardless of in-memory representation.
func Iosz(m *Meta) int {
	if m.Type == Int128 {
		return 16
	}
	return m.Size
}

func IsPrimitive(m *Meta) bool {
	switch m.Type {
	case Bool, Int8, Int16, Int32, Int64, Int128, Uint8, Uint16, Uint32, Uint64,
		Fpoint32, Fpoint64, String:
		return true
	default:
		return false
	}
}

func IsNumeric(m *Meta) bool {
	switch m.Type {
	case Int8, Int16, Int32, Int64, Int128, Uint8, Uint16, Uint32, Uint64, Fpoint32, Fpoint64:
		return true
	default:
		return false
	}
}

func IsInteger(m *Meta) bool {
	switch m.Type {
	case Int8, Int16, Int32, Int64, Int128, Uint8, Uint16, Uint32, Uint64:
		return true
	default:
		return false
	}
}

func IsSigned(m *Meta) bool {
	switch m.Type {
	case Int8, Int16, Int32, Int64, Int128:
		return true
	default:
		return false
	}
}

func IsFpoint(m *Meta) bool {
	return m.Type == Fpoint32 || m.Type == Fpoint64
}

// IsComparable reports whether m may be used as a map key: every primitive
// scalar is comparable, nothing aggregate is (spec.md §3, §4.3).
func IsComparable(m *Meta) bool {
	return IsPrimitive(m)
}

func IsTuple(m *Meta) bool { return m.Type == Tuple }
func IsMap(m *Meta) bool   { return m.Type == Map }
func IsObject(m *Meta) bool {
	return m.Type == Object
}
func IsInterface(m *Meta) bool { return m.Type == Interface }
func IsArray(m *Meta) bool     { return m.Type == Array }
func IsNone(m *Meta) bool      { return m.Type == None }
func IsVoid(m *Meta) bool      { return m.Type == Void }
func IsBool(m *Meta) bool      { return m.Type == Bool }
func IsString(m *Meta) bool    { return m.Type == String }

// Copy performs a deep copy of src into dst, the counterpart asserted by the
// §8 round-trip property (Copy followed by Equals must hold).
func Copy(dst, src *Meta) {
	*dst = *src
	if src.Elems != nil {
		dst.Elems = make([]*Meta, len(src.Elems))
		for i, e := range src.Elems {
			c := &Meta{}
			Copy(c, e)
			dst.Elems[i] = c
		}
	}
}

// Equals is structural equality ignoring Pos (a source position is not part
// of a type's identity).
func Equals(a, b *Meta) bool {
	if a.Type != b.Type || a.Name != b.Name || a.ArrLen != b.ArrLen {
		return false
	}
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !Equals(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

// ToStr renders m the way diagnostics print a type name.
func ToStr(m *Meta) string {
	switch m.Type {
	case Object, Interface:
		return m.Name
	case Array:
		var elem string
		if len(m.Elems) == 1 {
			elem = ToStr(m.Elems[0])
		}
		return fmt.Sprintf("%s[%d]", elem, m.ArrLen)
	case Map:
		if len(m.Elems) == 2 {
			return fmt.Sprintf("map(%s, %s)", ToStr(m.Elems[0]), ToStr(m.Elems[1]))
		}
		return "map"
	case Tuple:
		parts := make([]string, len(m.Elems))
		for i, e := range m.Elems {
			parts[i] = ToStr(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return m.Type.String()
	}
}
