package bridge

import (
	"errors"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"
)

// Daemon types in Config.
const (
	DaemonRTorrent = "rtorrent"
	DaemonRain     = "rain"
)

// Config for Bridge.
type Config struct {
	// Type of the remote daemon: "rtorrent" or "rain".
	Daemon string `yaml:"daemon"`
	// RPC endpoint of the daemon.
	URL string `yaml:"url"`
	// HTTP basic auth credentials. Only used for rtorrent.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Time to wait for a single RPC request.
	Timeout time.Duration `yaml:"timeout"`
	// Limit of requests sent to the daemon per second. Zero disables the limit.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Number of retries after transport failures.
	MaxRetries uint64 `yaml:"max_retries"`
	// Wait before the first retry.
	RetryInterval time.Duration `yaml:"retry_interval"`
	// Database file that keeps the last fetched details of every torrent.
	Database string `yaml:"database"`
	// Return the last fetched details when the daemon cannot be reached.
	UseCache bool `yaml:"use_cache"`
}

// DefaultConfig for Bridge.
var DefaultConfig = Config{
	Daemon:        DaemonRTorrent,
	URL:           "http://127.0.0.1/RPC2",
	Timeout:       30 * time.Second,
	MaxRetries:    3,
	RetryInterval: time.Second,
	Database:      "~/.rainbridge/details.db",
	UseCache:      true,
}

// LoadConfig reads the YAML config file at filename over DefaultConfig.
// If the file does not exist, DefaultConfig is returned.
func LoadConfig(filename string) (*Config, error) {
	c := DefaultConfig
	filename, err := homedir.Expand(filename)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	if err = yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
