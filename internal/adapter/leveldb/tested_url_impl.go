package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

// Hostnames never contain a NUL byte, so it separates the host partition
// from the full URL.
const keySep = 0x00

// TestedURLRepoImpl stores entries in a LevelDB directory under
// host + NUL + fullURL keys.
type TestedURLRepoImpl struct {
	db *leveldb.DB
}

// Open opens or creates the database at path.
func Open(path string) (*TestedURLRepoImpl, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
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

func hostPrefix(host string) []byte {
	return append([]byte(host), keySep)
}

func entryKey(host, fullURL string) []byte {
	return append(hostPrefix(host), fullURL...)
}

func (r *TestedURLRepoImpl) FindByKey(_ context.Context, host, fullURL string) (*entity.TestedURL, error) {
	raw, err := r.db.Get(entryKey(host, fullURL), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
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
	return r.db.Put(entryKey(t.Host, t.FullURL), raw, nil)
}

// ListByHost range-scans the host partition in key order.
func (r *TestedURLRepoImpl) ListByHost(_ context.Context, host string) ([]*entity.TestedURL, error) {
	it := r.db.NewIterator(util.BytesPrefix(hostPrefix(host)), nil)
	defer it.Release()

	var out []*entity.TestedURL
	for it.Next() {
		var t entity.TestedURL
		if err := json.Unmarshal(it.Value(), &t); err != nil {
			return nil, fmt.Errorf("failed to decode tested url %s: %w", it.Key(), err)
		}
		out = append(out, &t)
	}
	return out, it.Error()
}
