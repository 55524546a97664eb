// Package raind implements daemon.Daemon for a rain session over its JSON-RPC 2.0 interface.
package raind

import (
	"context"
	"errors"
	"net/http"
	"net/rpc"
	"strings"
	"time"

	"github.com/cenkalti/rainbridge/internal/daemon"
	"github.com/cenkalti/rainbridge/internal/logger"
	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	"github.com/powerman/rpc-codec/jsonrpc2"
)

// Error code the session returns for unknown torrent IDs.
const codeTorrentNotFound = 1

var _ daemon.Daemon = (*Daemon)(nil)

// Daemon talks to a rain session.
type Daemon struct {
	client *jsonrpc2.Client
	log    logger.Logger
}

// New returns a Daemon calling the JSON-RPC endpoint at url, e.g. "http://127.0.0.1:7246".
// Each HTTP request is limited by timeout. Zero means no limit.
func New(url string, timeout time.Duration) *Daemon {
	return &Daemon{
		client: jsonrpc2.NewCustomHTTPClient(url, &http.Client{Timeout: timeout}),
		log:    logger.New("rain " + url),
	}
}

func (d *Daemon) Close() error {
	return d.client.Close()
}

// Details returns trackers of the torrent and an error line for each tracker that reports an error.
// rain does not report piece states, returned Details has no pieces.
func (d *Daemon) Details(ctx context.Context, hash string) (*torrentdetails.Details, error) {
	id, err := d.findID(ctx, hash)
	if err != nil {
		return nil, err
	}
	var reply GetTorrentTrackersResponse
	err = d.call(ctx, "Session.GetTorrentTrackers", GetTorrentTrackersRequest{ID: id}, &reply)
	if err != nil {
		return nil, convertError(err)
	}
	trackers := make([]string, 0, len(reply.Trackers))
	var errs []string
	for _, t := range reply.Trackers {
		trackers = append(trackers, t.URL)
		if t.Error != nil {
			errs = append(errs, t.URL+": "+*t.Error)
		}
	}
	d.log.Debugf("fetched details of %s: %d trackers, %d errors", hash, len(trackers), len(errs))
	return torrentdetails.New(trackers, errs), nil
}

// findID returns the session ID of the torrent with the info hash.
func (d *Daemon) findID(ctx context.Context, hash string) (string, error) {
	var reply ListTorrentsResponse
	err := d.call(ctx, "Session.ListTorrents", ListTorrentsRequest{}, &reply)
	if err != nil {
		return "", err
	}
	for _, t := range reply.Torrents {
		if strings.EqualFold(t.InfoHash, hash) {
			return t.ID, nil
		}
	}
	return "", daemon.ErrTorrentNotFound
}

// call returns when the call completes or ctx is done, whichever comes first.
// An abandoned call keeps running in the background until the HTTP timeout and
// writes into reply, so reply must not be used after an error.
func (d *Daemon) call(ctx context.Context, method string, args, reply any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := d.client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-c.Done:
		return c.Error
	case <-ctx.Done():
		return ctx.Err()
	}
}

// convertError maps the error of a session call. Call returns server errors as rpc.ServerError
// holding the encoded *jsonrpc2.Error.
func convertError(err error) error {
	if errors.Is(err, rpc.ErrShutdown) {
		return err
	}
	if e := jsonrpc2.ServerError(err); e != nil && e.Code == codeTorrentNotFound {
		return daemon.ErrTorrentNotFound
	}
	return err
}
