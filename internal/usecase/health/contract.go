package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks search cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
