package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

type key struct {
	host    string
	fullURL string
}

// TestedURLRepoImpl is an in-process TestedURLRepository.
// It is safe for concurrent use.
type TestedURLRepoImpl struct {
	mu    sync.RWMutex
	items map[key]entity.TestedURL
}

// NewTestedURLRepo creates an empty in-memory repository.
func NewTestedURLRepo() *TestedURLRepoImpl {
	return &TestedURLRepoImpl{items: make(map[key]entity.TestedURL)}
}

func (r *TestedURLRepoImpl) FindByKey(_ context.Context, host, fullURL string) (*entity.TestedURL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[key{host, fullURL}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TestedURLRepoImpl) Upsert(_ context.Context, t *entity.TestedURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key{t.Host, t.FullURL}] = *t
	return nil
}

// ListByHost returns every entry for host, ordered by FullURL.
func (r *TestedURLRepoImpl) ListByHost(_ context.Context, host string) ([]*entity.TestedURL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.TestedURL
	for k, v := range r.items {
		if k.host == host {
			t := v
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullURL < out[j].FullURL })
	return out, nil
}
