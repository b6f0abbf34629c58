package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

var rootBucket = []byte("tested_urls")

// TestedURLRepoImpl stores entries in a bbolt file: one nested bucket per
// host under rootBucket, keyed by full URL.
type TestedURLRepoImpl struct {
	db *bolt.DB
}

// Open initializes or opens the database at path.
func Open(path string) (*TestedURLRepoImpl, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &TestedURLRepoImpl{db: db}, nil
}

// Close closes the underlying database.
func (r *TestedURLRepoImpl) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *TestedURLRepoImpl) FindByKey(_ context.Context, host, fullURL string) (*entity.TestedURL, error) {
	var raw []byte
	if err := r.db.View(func(tx *bolt.Tx) error {
		hb := tx.Bucket(rootBucket).Bucket([]byte(host))
		if hb == nil {
			return nil
		}
		if v := hb.Get([]byte(fullURL)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}

	var t entity.TestedURL
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tested url %s: %w", fullURL, err)
	}
	return &t, nil
}

func (r *TestedURLRepoImpl) Upsert(_ context.Context, t *entity.TestedURL) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		hb, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(t.Host))
		if err != nil {
			return err
		}
		return hb.Put([]byte(t.FullURL), raw)
	})
}

// ListByHost returns every entry for host in key order.
func (r *TestedURLRepoImpl) ListByHost(_ context.Context, host string) ([]*entity.TestedURL, error) {
	var out []*entity.TestedURL
	err := r.db.View(func(tx *bolt.Tx) error {
		hb := tx.Bucket(rootBucket).Bucket([]byte(host))
		if hb == nil {
			return nil
		}
		return hb.ForEach(func(k, v []byte) error {
			var t entity.TestedURL
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to decode tested url %s: %w", k, err)
			}
			out = append(out, &t)
			return nil
		})
	})
	return out, err
}
