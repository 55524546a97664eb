package xmlrpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/cenkalti/rainbridge/internal/logger"
	"github.com/juju/ratelimit"
	"github.com/rcrowley/go-metrics"
)

const maxResponseSize = 32 << 20

// ClientConfig for Client.
type ClientConfig struct {
	// Endpoint of the XML-RPC server, e.g. "http://localhost/RPC2".
	URL string
	// Credentials for HTTP basic authentication. Not sent when Username is empty.
	Username string
	Password string
	// Total time to wait for a single HTTP round trip.
	Timeout time.Duration
	// Maximum number of requests per second sent to the server. Zero means no limit.
	RequestsPerSecond float64
	// Number of times a call is retried after a transport failure or a 5xx response.
	// Faults are never retried.
	MaxRetries uint64
	// Wait before the first retry. Doubles on every retry.
	RetryInterval time.Duration
}

// DefaultClientConfig contains sane values for ClientConfig.
var DefaultClientConfig = ClientConfig{
	Timeout:       30 * time.Second,
	MaxRetries:    3,
	RetryInterval: time.Second,
}

// Client calls methods on an XML-RPC server over HTTP.
// It is safe for concurrent use.
type Client struct {
	config   ClientConfig
	registry *Registry
	http     *http.Client
	bucket   *ratelimit.Bucket
	log      logger.Logger

	metrics  metrics.Registry
	mCalls   metrics.Timer
	mFaults  metrics.Counter
	mRetries metrics.Counter
}

// NewClient returns a client that encodes call parameters with the default registry.
func NewClient(cfg ClientConfig) *Client {
	return NewClientWithRegistry(cfg, DefaultRegistry())
}

// NewClientWithRegistry returns a client that encodes call parameters with r.
func NewClientWithRegistry(cfg ClientConfig, r *Registry) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.Timeout,
		}).DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
	}
	c := &Client{
		config:   cfg,
		registry: r,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log:     logger.New("xmlrpc client " + cfg.URL),
		metrics: metrics.NewRegistry(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.bucket = ratelimit.NewBucketWithRate(cfg.RequestsPerSecond, 1)
	}
	c.mCalls = metrics.NewRegisteredTimer("calls", c.metrics)
	c.mFaults = metrics.NewRegisteredCounter("faults", c.metrics)
	c.mRetries = metrics.NewRegisteredCounter("retries", c.metrics)
	return c
}

// Close releases idle connections to the server.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Metrics returns the registry holding call statistics of the client.
func (c *Client) Metrics() metrics.Registry {
	return c.metrics
}

// Call invokes method with params and returns the decoded result.
// A fault from the server is returned as *Fault.
func (c *Client) Call(ctx context.Context, method string, params ...any) (any, error) {
	body, err := MarshalCall(c.registry, &MethodCall{Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	defer c.mCalls.UpdateSince(time.Now())

	var result any
	operation := func() error {
		err := c.wait(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.log.Debugf("calling %s", method)
		respBody, err := c.post(ctx, body)
		if err != nil {
			return err
		}
		result, err = ParseResponse(respBody)
		var fault *Fault
		if errors.As(err, &fault) {
			c.mFaults.Inc(1)
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	notify := func(err error, d time.Duration) {
		c.mRetries.Inc(1)
		c.log.Debugf("call %s failed, retrying in %s: %s", method, d, err)
	}
	err = backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify)
	if err != nil {
		c.log.Debugf("call %s failed: %s", method, err)
		return nil, err
	}
	return result, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	if c.config.MaxRetries == 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.RetryInterval
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxElapsedTime = 0 // limited by MaxRetries
	return backoff.WithMaxRetries(b, c.config.MaxRetries)
}

func (c *Client) wait(ctx context.Context) error {
	if c.bucket == nil {
		return nil
	}
	d := c.bucket.Take(1)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post sends the body and returns the response body.
// Errors that should not be retried are wrapped with backoff.Permanent.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "text/xml")
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err = &StatusError{
			Code:   resp.StatusCode,
			Header: resp.Header,
			Body:   string(b),
		}
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	return b, nil
}
