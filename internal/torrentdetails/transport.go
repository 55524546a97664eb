package torrentdetails

import (
	"encoding/json"

	"github.com/cenkalti/rainbridge/internal/parcel"
)

// TransportError is returned when Details cannot be written to or read from a container.
type TransportError struct {
	Field string
	Err   error
}

func (e *TransportError) Error() string {
	return "torrentdetails: " + e.Field + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// field is a single entry of the transport layout.
type field struct {
	name  string
	write func(parcel.Writer, *Details) error
	read  func(parcel.Reader, *Details) error
}

// schema is the transport layout. Both directions walk it in order.
var schema = []field{
	stringsField("trackers", func(d *Details) *[]string { return &d.trackers }),
	stringsField("errors", func(d *Details) *[]string { return &d.errors }),
	piecesField("pieces", func(d *Details) *[]Piece { return &d.pieces }),
}

func stringsField(name string, ref func(*Details) *[]string) field {
	return field{
		name: name,
		write: func(w parcel.Writer, d *Details) error {
			return w.WriteStrings(*ref(d))
		},
		read: func(r parcel.Reader, d *Details) error {
			l, err := r.ReadStrings()
			if err != nil {
				return err
			}
			*ref(d) = copyStrings(l)
			return nil
		},
	}
}

// piecesField writes invalid pieces as 0 and reads every slot as a valid piece.
// A null slot in the container becomes a valid piece with code 0.
func piecesField(name string, ref func(*Details) *[]Piece) field {
	return field{
		name: name,
		write: func(w parcel.Writer, d *Details) error {
			pieces := *ref(d)
			codes := make([]*int32, len(pieces))
			for i := range pieces {
				var c int32
				if pieces[i].Valid {
					c = pieces[i].Code
				}
				codes[i] = &c
			}
			return w.WriteInt32s(codes)
		},
		read: func(r parcel.Reader, d *Details) error {
			codes, err := r.ReadInt32s()
			if err != nil {
				return err
			}
			pieces := make([]Piece, len(codes))
			for i, c := range codes {
				if c != nil {
					pieces[i] = PieceCode(*c)
				} else {
					pieces[i] = PieceCode(0)
				}
			}
			*ref(d) = pieces
			return nil
		},
	}
}

// ReadParcel reads Details from a container written by WriteParcel.
// No Details is returned if any field cannot be read.
func ReadParcel(r parcel.Reader) (*Details, error) {
	d := new(Details)
	for _, f := range schema {
		err := f.read(r, d)
		if err != nil {
			return nil, &TransportError{Field: f.name, Err: err}
		}
	}
	return d, nil
}

// WriteParcel writes trackers, errors and pieces to the container, in that order.
func (d *Details) WriteParcel(w parcel.Writer) error {
	for _, f := range schema {
		err := f.write(w, d)
		if err != nil {
			return &TransportError{Field: f.name, Err: err}
		}
	}
	return nil
}

// MarshalBinary encodes d with parcel.Parcel.
func (d *Details) MarshalBinary() ([]byte, error) {
	p := parcel.New()
	err := d.WriteParcel(p)
	if err != nil {
		return nil, err
	}
	return p.Marshal(), nil
}

// UnmarshalBinary returns Details encoded with MarshalBinary.
func UnmarshalBinary(b []byte) (*Details, error) {
	return ReadParcel(parcel.Unmarshal(b))
}

type jsonDetails struct {
	Trackers []string `json:"trackers"`
	Errors   []string `json:"errors"`
	Pieces   []*int32 `json:"pieces"`
}

// MarshalJSON encodes invalid pieces as null.
func (d *Details) MarshalJSON() ([]byte, error) {
	j := jsonDetails{
		Trackers: d.trackers,
		Errors:   d.errors,
		Pieces:   make([]*int32, len(d.pieces)),
	}
	for i := range d.pieces {
		if d.pieces[i].Valid {
			c := d.pieces[i].Code
			j.Pieces[i] = &c
		}
	}
	return json.Marshal(j)
}
