package esdata

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	addresses          []string
	cloudID            string
	username           string
	password           string
	apiKey             string
	maxRetries         int
	insecureSkipVerify bool
	refresh            bool
	readinessTimeout   time.Duration

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	schemas     []mapping.Schema
	schemaFiles []string

	maxBatchSize    int
	defaultPageSize int
	maxPageSize     int

	logger *zap.Logger
}

// WithElasticsearch sets the cluster node URLs.
func WithElasticsearch(addresses ...string) Option {
	return func(c *clientConfig) {
		c.addresses = addresses
	}
}

// WithCloudID connects to an Elastic Cloud deployment instead of explicit addresses.
func WithCloudID(id string) Option {
	return func(c *clientConfig) {
		c.cloudID = id
	}
}

// WithBasicAuth sets username and password credentials.
func WithBasicAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithAPIKey authenticates with a base64-encoded API key.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithMaxRetries sets how many times a failed request is retried on another node.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithInsecureSkipVerify disables TLS certificate checks. Local clusters only.
func WithInsecureSkipVerify() Option {
	return func(c *clientConfig) {
		c.insecureSkipVerify = true
	}
}

// WithRefresh makes every write visible to search before it returns.
func WithRefresh(on bool) Option {
	return func(c *clientConfig) {
		c.refresh = on
	}
}

// WithReadinessTimeout bounds how long New waits for the cluster.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readinessTimeout = d
	}
}

// WithRedisCache caches search responses in Redis for ttl.
func WithRedisCache(addrs []string, password string, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		c.cacheTTL = ttl
	}
}

// WithSchemas registers schema-described entities.
func WithSchemas(schemas ...Schema) Option {
	return func(c *clientConfig) {
		c.schemas = append(c.schemas, schemas...)
	}
}

// WithSchemaFiles registers the entities declared in YAML schema files.
func WithSchemaFiles(paths ...string) Option {
	return func(c *clientConfig) {
		c.schemaFiles = append(c.schemaFiles, paths...)
	}
}

// WithMaxBatchSize bounds SaveAll.
func WithMaxBatchSize(n int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = n
	}
}

// WithPageSize sets the default and maximum search page sizes.
func WithPageSize(defaultSize, maxSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

func (c *clientConfig) applyDefaults() {
	if c.readinessTimeout <= 0 {
		c.readinessTimeout = defaultReadinessTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
}
