package elastic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/esdata/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addresses          []string
	Username           string
	Password           string
	APIKey             string
	CloudID            string
	MaxRetries         int
	InsecureSkipVerify bool
}

// Option configures a Store.
type Option func(*Store)

// WithLatency records per-operation latency into h (labels: op, status).
func WithLatency(h *prometheus.HistogramVec) Option {
	return func(s *Store) { s.latency = h }
}

// WithRefresh makes every write wait for a refresh, so it is visible to the next search.
func WithRefresh(on bool) Option {
	return func(s *Store) { s.refresh = on }
}

// Store implements db.Store via go-elasticsearch.
type Store struct {
	client    *elasticsearch.Client
	transport *http.Transport
	latency   *prometheus.HistogramVec
	refresh   bool
}

// NewStore creates an Elasticsearch store. The cluster is not contacted.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if len(cfg.Addresses) == 0 && cfg.CloudID == "" {
		return nil, errors.New("addresses or cloud id is required")
	}

	transport := newTransport(cfg)
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		CloudID:    cfg.CloudID,
		Username:   cfg.Username,
		Password:   cfg.Password,
		APIKey:     cfg.APIKey,
		MaxRetries: cfg.MaxRetries,
		Transport:  transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := &Store{client: client, transport: transport}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func newTransport(cfg Config) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if cfg.InsecureSkipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local clusters
	}
	return t
}

// Ping checks connectivity with a cluster info call.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	res, err := s.client.Info(s.client.Info.WithContext(ctx))
	if err = s.check(db.OpInfo, start, res, err); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle connections. The client keeps no other resources.
func (s *Store) Close() {
	s.transport.CloseIdleConnections()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) refreshParam() string {
	if s.refresh {
		return "true"
	}
	return "false"
}

// check closes a body-less response, records latency and converts failures.
func (s *Store) check(op string, start time.Time, res *esapi.Response, err error) error {
	if err == nil {
		defer res.Body.Close()
	}
	err = responseError(op, res, err)
	s.observe(op, start, err)
	return err
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.latency == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.latency.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
