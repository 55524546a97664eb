package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/rainbridge/internal/daemon"
	"github.com/cenkalti/rainbridge/internal/torrentdetails"
	"github.com/cenkalti/rainbridge/internal/xmlrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "f60cc95e3566af84c1ab223fd4ce80fa88e6438a"

// fakeRTorrent serves a single torrent with two pieces until down is set.
type fakeRTorrent struct {
	*httptest.Server
	down atomic.Bool
}

func newFakeRTorrent(t *testing.T) *fakeRTorrent {
	f := new(fakeRTorrent)
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			http.Error(w, "daemon is restarting", http.StatusServiceUnavailable)
			return
		}
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		call, err := xmlrpc.ParseCall(b)
		require.NoError(t, err)
		if call.Params[0] != "F60CC95E3566AF84C1AB223FD4CE80FA88E6438A" {
			b, _ = xmlrpc.MarshalFault(&xmlrpc.Fault{Code: -501, String: "Could not find info-hash."})
			_, _ = w.Write(b)
			return
		}
		var result any
		switch call.Method {
		case "t.multicall":
			result = []any{[]any{"udp://tracker.example:6969/announce", 0, 1}}
		case "d.size_chunks":
			result = 2
		case "d.bitfield":
			result = "40"
		}
		b, err = xmlrpc.MarshalResponse(xmlrpc.DefaultRegistry(), result)
		require.NoError(t, err)
		_, _ = w.Write(b)
	}))
	return f
}

func newTestBridge(t *testing.T, url string, useCache bool) *Bridge {
	cfg := DefaultConfig
	cfg.URL = url
	cfg.MaxRetries = 0
	cfg.Database = filepath.Join(t.TempDir(), "db", "details.db")
	cfg.UseCache = useCache
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestFetch(t *testing.T) {
	srv := newFakeRTorrent(t)
	defer srv.Close()
	b := newTestBridge(t, srv.URL, true)

	d, err := b.Fetch(context.Background(), "F60CC95E3566AF84C1AB223FD4CE80FA88E6438A")
	require.NoError(t, err)
	assert.Equal(t, "udp://tracker.example:6969/announce", d.TrackersText())
	assert.Equal(t, "", d.ErrorsText())
	assert.Equal(t, torrentdetails.PieceCodes(0, 1), d.Pieces())

	hashes, err := b.Cached()
	require.NoError(t, err)
	assert.Equal(t, []string{testHash}, hashes)

	// daemon goes away, saved details are returned
	srv.down.Store(true)
	d, err = b.Fetch(context.Background(), testHash)
	require.NoError(t, err)
	assert.Equal(t, torrentdetails.PieceCodes(0, 1), d.Pieces())

	require.NoError(t, b.Forget(testHash))
	hashes, err = b.Cached()
	require.NoError(t, err)
	assert.Empty(t, hashes)

	_, err = b.Fetch(context.Background(), testHash)
	var statusErr *xmlrpc.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestFetchWithoutCache(t *testing.T) {
	srv := newFakeRTorrent(t)
	defer srv.Close()
	b := newTestBridge(t, srv.URL, false)

	_, err := b.Fetch(context.Background(), testHash)
	require.NoError(t, err)

	srv.down.Store(true)
	_, err = b.Fetch(context.Background(), testHash)
	assert.Error(t, err)
}

func TestFetchNotFound(t *testing.T) {
	srv := newFakeRTorrent(t)
	defer srv.Close()
	b := newTestBridge(t, srv.URL, true)

	_, err := b.Fetch(context.Background(), "0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, daemon.ErrTorrentNotFound)
}

func TestFetchCanceled(t *testing.T) {
	srv := newFakeRTorrent(t)
	defer srv.Close()
	b := newTestBridge(t, srv.URL, true)

	_, err := b.Fetch(context.Background(), testHash)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Fetch(ctx, testHash)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnknownDaemon(t *testing.T) {
	cfg := DefaultConfig
	cfg.Daemon = "transmission"
	cfg.Database = filepath.Join(t.TempDir(), "details.db")
	_, err := New(cfg)
	assert.EqualError(t, err, `unknown daemon type: "transmission"`)
}
