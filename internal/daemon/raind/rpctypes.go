package raind

// Request and response types of the rain session RPC methods used by this package.

type Torrent struct {
	ID       string
	Name     string
	InfoHash string
	Port     uint16
}

type Tracker struct {
	URL      string
	Status   string
	Leechers int
	Seeders  int
	Error    *string
}

type ListTorrentsRequest struct {
}

type ListTorrentsResponse struct {
	Torrents []Torrent
}

type GetTorrentTrackersRequest struct {
	ID string
}

type GetTorrentTrackersResponse struct {
	Trackers []Tracker
}
