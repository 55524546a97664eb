// Package rtorrent implements daemon.Daemon for rTorrent over its XML-RPC interface.
package rtorrent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/rainbridge/internal/bitfield"
	"github.com/cenkalti/rainbridge/internal/daemon"
	"github.com/cenkalti/rainbridge/internal/logger"
	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	"github.com/cenkalti/rainbridge/internal/xmlrpc"
)

// Piece codes reported by this daemon.
const (
	PieceMissing int32 = 0
	PieceHave    int32 = 1
)

// rTorrent returns this fault code when it does not know the info hash.
const faultNoSuchHash = -501

// maxPieces bounds d.size_chunks before pieces are allocated.
const maxPieces = 1 << 24

var _ daemon.Daemon = (*Daemon)(nil)

// Daemon talks to an rTorrent instance.
type Daemon struct {
	client *xmlrpc.Client
	log    logger.Logger
}

// New returns a Daemon that calls the XML-RPC endpoint in cfg.
func New(cfg xmlrpc.ClientConfig) *Daemon {
	return &Daemon{
		client: xmlrpc.NewClient(cfg),
		log:    logger.New("rtorrent " + cfg.URL),
	}
}

// Client returns the underlying XML-RPC client.
func (d *Daemon) Client() *xmlrpc.Client {
	return d.client
}

func (d *Daemon) Close() error {
	d.client.Close()
	return nil
}

// Details returns trackers of the torrent and an error line for each enabled tracker that has failed announces.
// Pieces are read from the bitfield; if rTorrent has not checked the data yet all pieces are invalid.
func (d *Daemon) Details(ctx context.Context, hash string) (*torrentdetails.Details, error) {
	hash = strings.ToUpper(hash)
	res, err := d.client.Call(ctx, "t.multicall", hash, "", "t.url=", "t.failed_counter=", "t.is_enabled=")
	if err != nil {
		return nil, convertError(err)
	}
	rows, ok := res.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected t.multicall result: %T", res)
	}
	trackers := make([]string, 0, len(rows))
	var errs []string
	for i, r := range rows {
		row, ok := r.([]any)
		if !ok || len(row) != 3 {
			return nil, fmt.Errorf("unexpected t.multicall row %d: %v", i, r)
		}
		url, _ := row[0].(string)
		failed, _ := toInt(row[1])
		enabled, _ := toInt(row[2])
		trackers = append(trackers, url)
		if enabled != 0 && failed > 0 {
			errs = append(errs, fmt.Sprintf("%s: %d failed announces", url, failed))
		}
	}

	res, err = d.client.Call(ctx, "d.size_chunks", hash)
	if err != nil {
		return nil, convertError(err)
	}
	numPieces, ok := toInt(res)
	if !ok || numPieces < 0 || numPieces > maxPieces {
		return nil, fmt.Errorf("unexpected d.size_chunks result: %v", res)
	}
	res, err = d.client.Call(ctx, "d.bitfield", hash)
	if err != nil {
		return nil, convertError(err)
	}
	hexBits, _ := res.(string)
	pieces, err := parseBitfield(hexBits, int(numPieces))
	if err != nil {
		return nil, err
	}
	d.log.Debugf("fetched details of %s: %d trackers, %d errors, %d pieces", hash, len(trackers), len(errs), len(pieces))
	return torrentdetails.NewWithPieces(trackers, errs, pieces), nil
}

// parseBitfield converts the hex bitfield of rTorrent into piece states.
// rTorrent returns an empty bitfield while the data is not checked yet.
func parseBitfield(s string, numPieces int) ([]torrentdetails.Piece, error) {
	if numPieces < 0 || numPieces > maxPieces {
		return nil, fmt.Errorf("invalid piece count: %d", numPieces)
	}
	pieces := make([]torrentdetails.Piece, numPieces)
	if s == "" {
		return pieces, nil
	}
	bf, err := bitfield.ParseHex(s, uint32(numPieces))
	if err != nil {
		return nil, fmt.Errorf("invalid bitfield: %w", err)
	}
	for i := range pieces {
		if bf.Test(uint32(i)) {
			pieces[i] = torrentdetails.PieceCode(PieceHave)
		} else {
			pieces[i] = torrentdetails.PieceCode(PieceMissing)
		}
	}
	return pieces, nil
}

func convertError(err error) error {
	var fault *xmlrpc.Fault
	if errors.As(err, &fault) && fault.Code == faultNoSuchHash {
		return daemon.ErrTorrentNotFound
	}
	return err
}

func toInt(v any) (int64, bool) {
	switch i := v.(type) {
	case int32:
		return int64(i), true
	case int64:
		return i, true
	}
	return 0, false
}
