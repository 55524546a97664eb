// Package parcel provides ordered containers for moving values across process boundaries.
//
// Values must be read back in the same order they were written.
// A nil entry in an int32 list is a null slot. None of the containers in this
// package can represent null slots, they are written as 0.
package parcel

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrTruncated is returned when the container ends before the value being read.
	ErrTruncated = errors.New("parcel: truncated data")
	// ErrMalformed is returned when the container holds a value of unexpected shape.
	ErrMalformed = errors.New("parcel: malformed data")
)

// Writer appends values to a container.
type Writer interface {
	WriteStrings([]string) error
	WriteInt32s([]*int32) error
}

// Reader consumes values from a container.
type Reader interface {
	ReadStrings() ([]string, error)
	ReadInt32s() ([]*int32, error)
}

const nullLength = -1

// Parcel is a binary container. Every list is prefixed with its length as a big-endian int32;
// a nil list has length -1. Strings are written as length-prefixed UTF-8 bytes.
type Parcel struct {
	buf []byte
	pos int
}

var (
	_ Writer = (*Parcel)(nil)
	_ Reader = (*Parcel)(nil)
)

// New returns an empty Parcel for writing.
func New() *Parcel {
	return &Parcel{}
}

// Unmarshal returns a Parcel for reading the values in b.
func Unmarshal(b []byte) *Parcel {
	return &Parcel{buf: b}
}

// Marshal returns the written bytes.
func (p *Parcel) Marshal() []byte {
	return p.buf
}

func (p *Parcel) writeInt32(i int32) {
	p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(i))
}

func (p *Parcel) readInt32() (int32, error) {
	if len(p.buf)-p.pos < 4 {
		return 0, ErrTruncated
	}
	i := int32(binary.BigEndian.Uint32(p.buf[p.pos:]))
	p.pos += 4
	return i, nil
}

// readLength reads a list or string length. Lists of n items need at least n*size more bytes.
func (p *Parcel) readLength(size int) (int, error) {
	n, err := p.readInt32()
	if err != nil {
		return 0, err
	}
	if n < nullLength {
		return 0, ErrMalformed
	}
	if n > 0 && int(n) > (len(p.buf)-p.pos)/size {
		return 0, ErrTruncated
	}
	return int(n), nil
}

func (p *Parcel) WriteStrings(l []string) error {
	if l == nil {
		p.writeInt32(nullLength)
		return nil
	}
	if len(l) > math.MaxInt32 {
		return ErrMalformed
	}
	p.writeInt32(int32(len(l)))
	for _, s := range l {
		if len(s) > math.MaxInt32 {
			return ErrMalformed
		}
		p.writeInt32(int32(len(s)))
		p.buf = append(p.buf, s...)
	}
	return nil
}

func (p *Parcel) ReadStrings() ([]string, error) {
	n, err := p.readLength(4)
	if err != nil {
		return nil, err
	}
	if n == nullLength {
		return nil, nil
	}
	l := make([]string, n)
	for i := range l {
		size, err := p.readLength(1)
		if err != nil {
			return nil, err
		}
		if size == nullLength {
			return nil, ErrMalformed
		}
		l[i] = string(p.buf[p.pos : p.pos+size])
		p.pos += size
	}
	return l, nil
}

func (p *Parcel) WriteInt32s(l []*int32) error {
	if l == nil {
		p.writeInt32(nullLength)
		return nil
	}
	if len(l) > math.MaxInt32 {
		return ErrMalformed
	}
	p.writeInt32(int32(len(l)))
	for _, i := range l {
		if i == nil {
			p.writeInt32(0)
		} else {
			p.writeInt32(*i)
		}
	}
	return nil
}

func (p *Parcel) ReadInt32s() ([]*int32, error) {
	n, err := p.readLength(4)
	if err != nil {
		return nil, err
	}
	if n == nullLength {
		return nil, nil
	}
	l := make([]*int32, n)
	for i := range l {
		v, err := p.readInt32()
		if err != nil {
			return nil, err
		}
		l[i] = &v
	}
	return l, nil
}
