package parcel

import (
	"fmt"
	"math"

	"github.com/zeebo/bencode"
)

// BencodeParcel is a container that holds the written values as items of a single bencoded list.
type BencodeParcel struct {
	items []bencode.RawMessage
	pos   int
}

var (
	_ Writer = (*BencodeParcel)(nil)
	_ Reader = (*BencodeParcel)(nil)
)

// NewBencode returns an empty BencodeParcel for writing.
func NewBencode() *BencodeParcel {
	return &BencodeParcel{}
}

// UnmarshalBencode returns a BencodeParcel for reading the values in b.
func UnmarshalBencode(b []byte) (*BencodeParcel, error) {
	var items []bencode.RawMessage
	err := bencode.DecodeBytes(b, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	return &BencodeParcel{items: items}, nil
}

// Marshal returns the bencoded list of written values.
func (p *BencodeParcel) Marshal() ([]byte, error) {
	items := p.items
	if items == nil {
		items = []bencode.RawMessage{}
	}
	return bencode.EncodeBytes(items)
}

func (p *BencodeParcel) write(v any) error {
	b, err := bencode.EncodeBytes(v)
	if err != nil {
		return err
	}
	p.items = append(p.items, b)
	return nil
}

func (p *BencodeParcel) next(v any) error {
	if p.pos >= len(p.items) {
		return ErrTruncated
	}
	err := bencode.DecodeBytes(p.items[p.pos], v)
	if err != nil {
		return fmt.Errorf("%w: item %d: %s", ErrMalformed, p.pos, err)
	}
	p.pos++
	return nil
}

// WriteStrings writes l as a bencoded list. A nil list is written as an empty list.
func (p *BencodeParcel) WriteStrings(l []string) error {
	if l == nil {
		l = []string{}
	}
	return p.write(l)
}

func (p *BencodeParcel) ReadStrings() ([]string, error) {
	var l []string
	err := p.next(&l)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = []string{}
	}
	return l, nil
}

// WriteInt32s writes l as a bencoded list of integers. Null slots are written as 0.
func (p *BencodeParcel) WriteInt32s(l []*int32) error {
	ints := make([]int64, len(l))
	for i, v := range l {
		if v != nil {
			ints[i] = int64(*v)
		}
	}
	return p.write(ints)
}

func (p *BencodeParcel) ReadInt32s() ([]*int32, error) {
	var ints []int64
	err := p.next(&ints)
	if err != nil {
		return nil, err
	}
	l := make([]*int32, len(ints))
	for i, v := range ints {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: value %d out of int32 range", ErrMalformed, v)
		}
		v32 := int32(v)
		l[i] = &v32
	}
	return l, nil
}
