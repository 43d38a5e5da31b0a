// internal/common/database/database.go
package database

import (
	"context"
	"time"
)

// Store is a connection to one report destination.
type Store interface {
	Kind() string
	Ping(ctx context.Context) error
	Close() error
}

const (
	dialTimeout   = 5 * time.Second
	ioTimeout     = 3 * time.Second
	connLifetime  = 5 * time.Minute
	disconnectMax = 5 * time.Second
)

var (
	_ Store = (*Redis)(nil)
	_ Store = (*Postgres)(nil)
	_ Store = (*Elasticsearch)(nil)
	_ Store = (*Mongo)(nil)
)
