package repository

import (
	"context"

	"github.com/user/ishtml5-service/internal/entity"
)

// TestedURLRepository defines the cache contract for doctype verdicts.
type TestedURLRepository interface {
	// FindByKey returns the entry for (host, fullURL), or ErrNotFound.
	// Staleness is not checked here.
	FindByKey(ctx context.Context, host, fullURL string) (*entity.TestedURL, error)
	// Upsert writes the entry, replacing any existing one with the same key.
	Upsert(ctx context.Context, t *entity.TestedURL) error
}

// HostLister is implemented by backends that can range over a single host partition.
type HostLister interface {
	ListByHost(ctx context.Context, host string) ([]*entity.TestedURL, error)
}

// Pinger is implemented by backends with a remote connection worth health-checking.
type Pinger interface {
	Ping(ctx context.Context) error
}
