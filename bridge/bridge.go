// Package bridge fetches torrent details from a remote torrent daemon and keeps the last result of each torrent.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/rainbridge/internal/daemon"
	"github.com/cenkalti/rainbridge/internal/daemon/raind"
	"github.com/cenkalti/rainbridge/internal/daemon/rtorrent"
	"github.com/cenkalti/rainbridge/internal/detailsstore"
	"github.com/cenkalti/rainbridge/internal/logger"
	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	"github.com/cenkalti/rainbridge/internal/xmlrpc"
	"github.com/mitchellh/go-homedir"
)

// Version of the program. Set with linker flags on release builds.
var Version = "0.0.0"

// Bridge connects to a daemon and caches fetched details.
type Bridge struct {
	config Config
	daemon daemon.Daemon
	store  *detailsstore.Store
	log    logger.Logger
}

// New returns a Bridge for the daemon in cfg. The database file is created if it does not exist.
func New(cfg Config) (*Bridge, error) {
	d, err := newDaemon(cfg)
	if err != nil {
		return nil, err
	}
	dbPath, err := homedir.Expand(cfg.Database)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	err = os.MkdirAll(filepath.Dir(dbPath), 0o750)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	store, err := detailsstore.Open(dbPath)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("cannot open database %s: %w", dbPath, err)
	}
	return &Bridge{
		config: cfg,
		daemon: d,
		store:  store,
		log:    logger.New("bridge"),
	}, nil
}

func newDaemon(cfg Config) (daemon.Daemon, error) {
	switch cfg.Daemon {
	case DaemonRTorrent:
		return rtorrent.New(xmlrpc.ClientConfig{
			URL:               cfg.URL,
			Username:          cfg.Username,
			Password:          cfg.Password,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			MaxRetries:        cfg.MaxRetries,
			RetryInterval:     cfg.RetryInterval,
		}), nil
	case DaemonRain:
		return raind.New(cfg.URL, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("unknown daemon type: %q", cfg.Daemon)
}

// Close the daemon connection and the database.
func (b *Bridge) Close() error {
	err := b.daemon.Close()
	err2 := b.store.Close()
	if err != nil {
		return err
	}
	return err2
}

// Fetch returns the details of the torrent with the hex encoded info hash.
// Fetched details are saved. If the daemon call fails and UseCache is set,
// the last saved details are returned instead.
func (b *Bridge) Fetch(ctx context.Context, hash string) (*torrentdetails.Details, error) {
	hash = strings.ToLower(hash)
	d, err := b.daemon.Details(ctx, hash)
	if err == nil {
		err2 := b.store.Put(hash, d, time.Now())
		if err2 != nil {
			b.log.Errorln("cannot save details:", err2)
		}
		return d, nil
	}
	if !b.config.UseCache || errors.Is(err, daemon.ErrTorrentNotFound) || errors.Is(err, context.Canceled) {
		return nil, err
	}
	cached, fetchedAt, err2 := b.store.Get(hash)
	if err2 != nil {
		if !errors.Is(err2, detailsstore.ErrNotFound) {
			b.log.Errorln("cannot read saved details:", err2)
		}
		return nil, err
	}
	b.log.Warningf("cannot fetch details of %s, returning details fetched at %s: %s", hash, fetchedAt.Format(time.RFC3339), err)
	return cached, nil
}

// Cached returns the hashes of torrents with saved details.
func (b *Bridge) Cached() ([]string, error) {
	return b.store.List()
}

// Forget removes the saved details of the torrent.
func (b *Bridge) Forget(hash string) error {
	return b.store.Delete(strings.ToLower(hash))
}
