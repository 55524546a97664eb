// Package bitfield reads piece bitfields reported by torrent daemons.
package bitfield

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
)

// ErrShort is returned when the bitfield has fewer bytes than needed for its length.
var ErrShort = errors.New("bitfield too short")

// BitField is a read-only sequence of bits. Bit 0 is the most significant bit of the first byte.
type BitField struct {
	b      []byte
	length uint32
}

// ParseHex decodes a hex encoded bitfield of length bits.
// Extra bytes are ignored and unused bits in the last byte are cleared.
func ParseHex(s string, length uint32) (BitField, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return BitField{}, err
	}
	return FromBytes(b, length)
}

// FromBytes returns a BitField of length bits from b. Bytes in b are not copied.
func FromBytes(b []byte, length uint32) (BitField, error) {
	n := (length + 7) / 8
	if uint32(len(b)) < n {
		return BitField{}, fmt.Errorf("%w: %d bytes for %d bits", ErrShort, len(b), length)
	}
	b = b[:n]
	if mod := length % 8; mod != 0 {
		b[n-1] &= ^byte(0xff >> mod)
	}
	return BitField{b, length}, nil
}

// Len returns the number of bits.
func (b BitField) Len() uint32 { return b.length }

// Test bit i. Panics if i >= b.Len().
func (b BitField) Test(i uint32) bool {
	if i >= b.length {
		panic("index out of bound")
	}
	return b.b[i/8]&(1<<(7-i%8)) != 0
}

// Count returns the count of set bits.
func (b BitField) Count() uint32 {
	var total int
	for _, v := range b.b {
		total += bits.OnesCount8(v)
	}
	return uint32(total)
}

// Hex returns the bytes as string.
func (b BitField) Hex() string { return hex.EncodeToString(b.b) }
