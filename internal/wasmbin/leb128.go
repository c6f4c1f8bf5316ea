// Package wasmbin is the Wasm module builder Codegen emits through (spec.md
// §4.5): value/instruction types, a Module assembly API, and a binary
// encoder. It plays the role the original compiler delegated to Binaryen's
// C API; here it is a small from-scratch encoder in the same spirit as
// wazero's internal/wasm + internal/wasm/binary + internal/leb128 split.
package wasmbin

// EncodeU32 appends n as an unsigned LEB128 varint.
func EncodeU32(buf []byte, n uint32) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// EncodeU64 appends n as an unsigned LEB128 varint.
func EncodeU64(buf []byte, n uint64) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// EncodeI32 appends n as a signed LEB128 varint.
func EncodeI32(buf []byte, v int32) []byte {
	return encodeSigned(buf, int64(v), 32)
}

// EncodeI64 appends n as a signed LEB128 varint.
func EncodeI64(buf []byte, v int64) []byte {
	return encodeSigned(buf, v, 64)
}

func encodeSigned(buf []byte, v int64, bits int) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf = append(buf, b)
	}
	return buf
}

// DecodeU32 reads an unsigned LEB128 varint from the front of b, returning
// the value and the number of bytes consumed.
func DecodeU32(b []byte) (uint32, int) {
	var out uint32
	var shift uint
	for i, c := range b {
		out |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return out, i + 1
		}
		shift += 7
	}
	return out, len(b)
}

// DecodeI64 reads a signed LEB128 varint from the front of b, returning the
// value and the number of bytes consumed. i32 immediates share the same
// wire shape and decode through this as well.
func DecodeI64(b []byte) (int64, int) {
	var out int64
	var shift uint
	for i, c := range b {
		out |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				out |= -1 << shift
			}
			return out, i + 1
		}
	}
	return out, len(b)
}

// EncodeName appends s as a length-prefixed UTF-8 byte vector, the shape
// used for import/export/function names throughout the binary format.
func EncodeName(buf []byte, s string) []byte {
	buf = EncodeU32(buf, uint32(len(s)))
	return append(buf, s...)
}

// EncodeBytes appends a raw byte vector with its LEB128 length prefix.
func EncodeBytes(buf []byte, b []byte) []byte {
	buf = EncodeU32(buf, uint32(len(b)))
	return append(buf, b...)
}
