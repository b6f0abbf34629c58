package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

func openTestRepo(t *testing.T) (*TestedURLRepoImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ishtml5.db")
	repo, err := Open(path)
	require.NoError(t, err)
	return repo, path
}

func TestTestedURLRepo_FindMissing(t *testing.T) {
	repo, _ := openTestRepo(t)
	defer repo.Close()

	_, err := repo.FindByKey(context.Background(), "example.com", "https://example.com/")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTestedURLRepo_UpsertAndReopen(t *testing.T) {
	ctx := context.Background()
	repo, path := openTestRepo(t)
	ts := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &entity.TestedURL{Host: "example.com", FullURL: "https://example.com/", IsHTML5: false, Timestamp: ts}))
	require.NoError(t, repo.Upsert(ctx, &entity.TestedURL{Host: "example.com", FullURL: "https://example.com/", IsHTML5: true, Timestamp: ts.Add(time.Hour)}))
	require.NoError(t, repo.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.FindByKey(ctx, "example.com", "https://example.com/")
	require.NoError(t, err)
	assert.True(t, got.IsHTML5)
	assert.True(t, ts.Add(time.Hour).Equal(got.Timestamp))
}

func TestTestedURLRepo_ListByHost(t *testing.T) {
	ctx := context.Background()
	repo, _ := openTestRepo(t)
	defer repo.Close()

	for _, tu := range []*entity.TestedURL{
		{Host: "a.com", FullURL: "https://a.com/z"},
		{Host: "a.com", FullURL: "https://a.com/b"},
		{Host: "b.com", FullURL: "https://b.com/"},
	} {
		require.NoError(t, repo.Upsert(ctx, tu))
	}

	got, err := repo.ListByHost(ctx, "a.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://a.com/b", got[0].FullURL)
	assert.Equal(t, "https://a.com/z", got[1].FullURL)

	none, err := repo.ListByHost(ctx, "missing.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClose_Nil(t *testing.T) {
	var repo *TestedURLRepoImpl
	assert.NoError(t, repo.Close())
}
