// Package daemon contains the interface that adapters for remote torrent daemons implement.
package daemon

import (
	"context"
	"errors"

	"github.com/cenkalti/rainbridge/internal/torrentdetails"
)

// ErrTorrentNotFound is returned when the daemon does not have the requested torrent.
var ErrTorrentNotFound = errors.New("torrent not found")

// Daemon fetches torrent state from a remote torrent client.
type Daemon interface {
	// Details returns the tracker and piece state of the torrent with the hex encoded info hash.
	Details(ctx context.Context, hash string) (*torrentdetails.Details, error)
	Close() error
}
