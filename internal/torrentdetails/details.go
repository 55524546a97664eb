// Package torrentdetails provides a snapshot of the tracker and piece state a daemon reports for a torrent.
package torrentdetails

import (
	"strings"
)

// Piece is the status code a daemon reports for a single piece.
// An invalid Piece is a slot the daemon did not report a status for.
type Piece struct {
	Code  int32
	Valid bool
}

// PieceCode returns a valid Piece with code c.
func PieceCode(c int32) Piece {
	return Piece{Code: c, Valid: true}
}

// PieceCodes returns valid Pieces for each code.
func PieceCodes(codes ...int32) []Piece {
	pieces := make([]Piece, len(codes))
	for i, c := range codes {
		pieces[i] = PieceCode(c)
	}
	return pieces
}

// Details of a torrent at the time the daemon was queried.
// It is never modified after construction and is safe for concurrent use.
type Details struct {
	trackers []string
	errors   []string
	pieces   []Piece
}

// New returns Details for a torrent whose piece states are not known.
func New(trackers, errors []string) *Details {
	return NewWithPieces(trackers, errors, nil)
}

// NewWithPieces returns Details with piece states. Index of a Piece is the piece index in the torrent.
// The slices are copied, nil slices are stored as empty ones.
func NewWithPieces(trackers, errors []string, pieces []Piece) *Details {
	return &Details{
		trackers: copyStrings(trackers),
		errors:   copyStrings(errors),
		pieces:   append(make([]Piece, 0, len(pieces)), pieces...),
	}
}

func copyStrings(l []string) []string {
	return append(make([]string, 0, len(l)), l...)
}

// Trackers returns tracker URLs in the order the daemon reported them.
func (d *Details) Trackers() []string {
	return copyStrings(d.trackers)
}

// Errors returns tracker error messages in the order the daemon reported them.
// Errors are not related to Trackers by position.
func (d *Details) Errors() []string {
	return copyStrings(d.errors)
}

// Pieces returns the piece states indexed by piece index.
func (d *Details) Pieces() []Piece {
	return append(make([]Piece, 0, len(d.pieces)), d.pieces...)
}

// NumPieces returns the number of piece states.
func (d *Details) NumPieces() int {
	return len(d.pieces)
}

// TrackersText returns one tracker URL per line.
func (d *Details) TrackersText() string {
	return strings.Join(d.trackers, "\n")
}

// ErrorsText returns one tracker error per line.
func (d *Details) ErrorsText() string {
	return strings.Join(d.errors, "\n")
}
