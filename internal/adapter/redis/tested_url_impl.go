package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
	"github.com/user/ishtml5-service/pkg/utils"
)

const testedURLPrefix = "ishtml5:tested:"

// TestedURLRepoImpl provides a concrete implementation for the TestedURLRepository interface using Redis.
// Each host is one hash; fields are hashed full URLs.
type TestedURLRepoImpl struct {
	client redis.UniversalClient
}

// NewTestedURLRepo creates a new instance of TestedURLRepoImpl.
func NewTestedURLRepo(client redis.UniversalClient) *TestedURLRepoImpl {
	return &TestedURLRepoImpl{client: client}
}

// hostKey creates the Redis key holding every entry for a host.
func (r *TestedURLRepoImpl) hostKey(host string) string {
	return fmt.Sprintf("%s%s", testedURLPrefix, host)
}

// FindByKey reads one field of the host hash.
func (r *TestedURLRepoImpl) FindByKey(ctx context.Context, host, fullURL string) (*entity.TestedURL, error) {
	raw, err := r.client.HGet(ctx, r.hostKey(host), utils.HashURL(fullURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read tested url %s: %w", fullURL, err)
	}

	var t entity.TestedURL
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tested url %s: %w", fullURL, err)
	}
	return &t, nil
}

// Upsert writes the entry with HSET, which replaces any existing field.
func (r *TestedURLRepoImpl) Upsert(ctx context.Context, t *entity.TestedURL) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.hostKey(t.Host), utils.HashURL(t.FullURL), raw).Err()
}

// ListByHost returns every entry stored for host.
func (r *TestedURLRepoImpl) ListByHost(ctx context.Context, host string) ([]*entity.TestedURL, error) {
	fields, err := r.client.HGetAll(ctx, r.hostKey(host)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.TestedURL, 0, len(fields))
	for _, raw := range fields {
		var t entity.TestedURL
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to decode tested url in %s: %w", host, err)
		}
		out = append(out, &t)
	}
	return out, nil
}

// Ping checks the connection to Redis.
func (r *TestedURLRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
