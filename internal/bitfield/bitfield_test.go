package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	v, err := ParseHex("A0C0", 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), v.Len())
	assert.Equal(t, uint32(4), v.Count())
	var set []uint32
	for i := uint32(0); i < v.Len(); i++ {
		if v.Test(i) {
			set = append(set, i)
		}
	}
	assert.Equal(t, []uint32{0, 2, 8, 9}, set)
	assert.Panics(t, func() { v.Test(10) })
}

func TestUnusedBitsCleared(t *testing.T) {
	v, err := ParseHex("0fff", 7)
	require.NoError(t, err)
	assert.Equal(t, "0e", v.Hex())
	assert.Equal(t, uint32(3), v.Count())
}

func TestParseHexErrors(t *testing.T) {
	_, err := ParseHex("zz", 1)
	assert.Error(t, err)

	_, err = ParseHex("ff", 9)
	assert.ErrorIs(t, err, ErrShort)

	v, err := ParseHex("", 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v.Count())
}
