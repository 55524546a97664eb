package raind

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/rpc"
	"testing"
	"time"

	"github.com/cenkalti/rainbridge/internal/daemon"
	"github.com/powerman/rpc-codec/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "f60cc95e3566af84c1ab223fd4ce80fa88e6438a"

// sessionHandler mimics the RPC handler of a rain session.
type sessionHandler struct {
	torrents []Torrent
	trackers map[string][]Tracker
}

func (h *sessionHandler) ListTorrents(args *ListTorrentsRequest, reply *ListTorrentsResponse) error {
	reply.Torrents = h.torrents
	return nil
}

func (h *sessionHandler) GetTorrentTrackers(args *GetTorrentTrackersRequest, reply *GetTorrentTrackersResponse) error {
	trackers, ok := h.trackers[args.ID]
	if !ok {
		return jsonrpc2.NewError(codeTorrentNotFound, "torrent not found")
	}
	reply.Trackers = trackers
	return nil
}

func newTestServer(t *testing.T, h *sessionHandler) *httptest.Server {
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("Session", h))
	return httptest.NewServer(jsonrpc2.HTTPHandler(srv))
}

func TestDetails(t *testing.T) {
	timeout := "timeout"
	srv := newTestServer(t, &sessionHandler{
		torrents: []Torrent{
			{ID: "other", InfoHash: "0000000000000000000000000000000000000000"},
			{ID: "abc", Name: "ubuntu.iso", InfoHash: testHash},
		},
		trackers: map[string][]Tracker{
			"abc": {
				{URL: "udp://tracker.example:6969/announce", Status: "Working", Seeders: 3},
				{URL: "http://tracker.example/announce", Status: "Not working", Error: &timeout},
			},
		},
	})
	defer srv.Close()

	d := New(srv.URL, 5*time.Second)
	defer d.Close()
	details, err := d.Details(context.Background(), "F60CC95E3566AF84C1AB223FD4CE80FA88E6438A")
	require.NoError(t, err)
	assert.Equal(t, "udp://tracker.example:6969/announce\nhttp://tracker.example/announce", details.TrackersText())
	assert.Equal(t, []string{"http://tracker.example/announce: timeout"}, details.Errors())
	assert.Equal(t, 0, details.NumPieces())
}

func TestDetailsNotFound(t *testing.T) {
	srv := newTestServer(t, &sessionHandler{})
	defer srv.Close()

	d := New(srv.URL, 5*time.Second)
	defer d.Close()
	_, err := d.Details(context.Background(), testHash)
	assert.ErrorIs(t, err, daemon.ErrTorrentNotFound)
}

func TestDetailsRemovedBetweenCalls(t *testing.T) {
	srv := newTestServer(t, &sessionHandler{
		torrents: []Torrent{{ID: "abc", InfoHash: testHash}},
	})
	defer srv.Close()

	d := New(srv.URL, 5*time.Second)
	defer d.Close()
	_, err := d.Details(context.Background(), testHash)
	assert.ErrorIs(t, err, daemon.ErrTorrentNotFound)
}

func TestDetailsCanceled(t *testing.T) {
	d := New("http://127.0.0.1:1", 5*time.Second)
	defer d.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Details(ctx, testHash)
	assert.ErrorIs(t, err, context.Canceled)
}

// newStalledServer returns a server that does not respond until the test ends.
func newStalledServer(t *testing.T) *httptest.Server {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv
}

func TestDetailsContextDeadline(t *testing.T) {
	srv := newStalledServer(t)
	d := New(srv.URL, 0)
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := d.Details(ctx, testHash)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDetailsTimeout(t *testing.T) {
	srv := newStalledServer(t)
	d := New(srv.URL, 200*time.Millisecond)
	defer d.Close()

	start := time.Now()
	_, err := d.Details(context.Background(), testHash)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
