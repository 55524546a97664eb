package parcel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(v ...int32) []*int32 {
	l := make([]*int32, len(v))
	for i := range v {
		l[i] = &v[i]
	}
	return l
}

func values(l []*int32) []int32 {
	v := make([]int32, len(l))
	for i, p := range l {
		if p == nil {
			v[i] = -1 << 31
		} else {
			v[i] = *p
		}
	}
	return v
}

func TestParcel(t *testing.T) {
	p := New()
	require.NoError(t, p.WriteStrings([]string{"udp://a", "", "héllo"}))
	require.NoError(t, p.WriteStrings(nil))
	require.NoError(t, p.WriteInt32s(ints(0, 1, -1, math.MaxInt32)))

	r := Unmarshal(p.Marshal())
	s, err := r.ReadStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"udp://a", "", "héllo"}, s)
	s, err = r.ReadStrings()
	require.NoError(t, err)
	assert.Nil(t, s)
	i, err := r.ReadInt32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, -1, math.MaxInt32}, values(i))

	_, err = r.ReadStrings()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParcelNullSlot(t *testing.T) {
	p := New()
	require.NoError(t, p.WriteInt32s([]*int32{nil, ints(5)[0]}))
	i, err := Unmarshal(p.Marshal()).ReadInt32s()
	require.NoError(t, err)
	require.Len(t, i, 2)
	require.NotNil(t, i[0], "null slot is read back as 0")
	assert.Equal(t, []int32{0, 5}, values(i))
}

func TestParcelLayout(t *testing.T) {
	p := New()
	require.NoError(t, p.WriteStrings([]string{"ab"}))
	require.NoError(t, p.WriteInt32s(ints(7)))
	assert.Equal(t, []byte{
		0, 0, 0, 1, // list length
		0, 0, 0, 2, 'a', 'b',
		0, 0, 0, 1, // list length
		0, 0, 0, 7,
	}, p.Marshal())
}

func TestParcelTruncated(t *testing.T) {
	p := New()
	require.NoError(t, p.WriteStrings([]string{"abc", "def"}))
	require.NoError(t, p.WriteInt32s(ints(1, 2, 3)))
	b := p.Marshal()

	for n := 0; n < len(b); n++ {
		r := Unmarshal(b[:n])
		_, err := r.ReadStrings()
		if err == nil {
			_, err = r.ReadInt32s()
		}
		assert.True(t, errors.Is(err, ErrTruncated), "length %d: %v", n, err)
	}
}

func TestParcelMalformed(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0xff, 0xff, 0xfe}).ReadInt32s()
	assert.ErrorIs(t, err, ErrMalformed)

	// list claims a billion items
	_, err = Unmarshal([]byte{0x3b, 0x9a, 0xca, 0x00, 0, 0, 0, 0}).ReadInt32s()
	assert.ErrorIs(t, err, ErrTruncated)

	// null string inside a list
	_, err = Unmarshal([]byte{0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff}).ReadStrings()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBencodeParcel(t *testing.T) {
	p := NewBencode()
	require.NoError(t, p.WriteStrings([]string{"udp://a", "b"}))
	require.NoError(t, p.WriteStrings(nil))
	require.NoError(t, p.WriteInt32s([]*int32{ints(3)[0], nil, ints(-2)[0]}))
	b, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, "ll7:udp://a1:belelei3ei0ei-2eee", string(b))

	r, err := UnmarshalBencode(b)
	require.NoError(t, err)
	s, err := r.ReadStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"udp://a", "b"}, s)
	s, err = r.ReadStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{}, s)
	i, err := r.ReadInt32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 0, -2}, values(i))

	_, err = r.ReadInt32s()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestBencodeParcelMalformed(t *testing.T) {
	_, err := UnmarshalBencode([]byte("i3e"))
	assert.ErrorIs(t, err, ErrMalformed)

	r, err := UnmarshalBencode([]byte("l3:abce"))
	require.NoError(t, err)
	_, err = r.ReadStrings()
	assert.ErrorIs(t, err, ErrMalformed)

	r, err = UnmarshalBencode([]byte("lli4294967296eee"))
	require.NoError(t, err)
	_, err = r.ReadInt32s()
	assert.ErrorIs(t, err, ErrMalformed)
}
