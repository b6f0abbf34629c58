package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

type execCall struct {
	sql  string
	args []any
}

// fakeQuerier records Exec calls and serves canned rows.
type fakeQuerier struct {
	execs    []execCall
	execErr  error
	row      fakeRow
	rows     *fakeRows
	queryErr error
	queries  []execCall
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

// fakeRows iterates over canned rows and fails Scan at scanErrAt, if set.
type fakeRows struct {
	rows      []fakeRow
	pos       int
	err       error
	closed    bool
	scanErrAt int
}

func (r *fakeRows) Close() { r.closed = true }
func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.pos-1].values, nil }
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErrAt > 0 && r.pos == r.scanErrAt {
		return errors.New("cannot scan row")
	}
	return r.rows[r.pos-1].Scan(dest...)
}

func TestFindByKey_NoRows(t *testing.T) {
	repo := NewTestedURLRepo(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})

	got, err := repo.FindByKey(context.Background(), "example.com", "https://example.com/")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByKey_OtherError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewTestedURLRepo(&fakeQuerier{row: fakeRow{err: boom}})

	_, err := repo.FindByKey(context.Background(), "example.com", "https://example.com/")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestFindByKey_Found(t *testing.T) {
	local := time.Date(2026, 10, 1, 10, 0, 0, 0, time.FixedZone("AEST", 10*3600))
	repo := NewTestedURLRepo(&fakeQuerier{row: fakeRow{values: []any{"example.com", "https://example.com/", true, local}}})

	got, err := repo.FindByKey(context.Background(), "example.com", "https://example.com/")

	require.NoError(t, err)
	assert.Equal(t, "example.com", got.Host)
	assert.Equal(t, "https://example.com/", got.FullURL)
	assert.True(t, got.IsHTML5)
	assert.Equal(t, time.UTC, got.Timestamp.Location())
	assert.True(t, local.Equal(got.Timestamp))
}

func TestUpsert_UsesOnConflict(t *testing.T) {
	q := &fakeQuerier{}
	repo := NewTestedURLRepo(q)
	ts := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	err := repo.Upsert(context.Background(), &entity.TestedURL{Host: "example.com", FullURL: "https://example.com/", IsHTML5: true, Timestamp: ts})

	require.NoError(t, err)
	require.Len(t, q.execs, 1)
	assert.Contains(t, q.execs[0].sql, "ON CONFLICT (host, full_url) DO UPDATE")
	assert.Equal(t, []any{"example.com", "https://example.com/", true, ts}, q.execs[0].args)
}

func TestListByHost(t *testing.T) {
	local := time.Date(2026, 10, 1, 10, 0, 0, 0, time.FixedZone("AEST", 10*3600))
	rows := &fakeRows{rows: []fakeRow{
		{values: []any{"example.com", "https://example.com/", true, local}},
		{values: []any{"example.com", "https://example.com/about", false, local}},
	}}
	q := &fakeQuerier{rows: rows}

	got, err := NewTestedURLRepo(q).ListByHost(context.Background(), "example.com")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/", got[0].FullURL)
	assert.True(t, got[0].IsHTML5)
	assert.Equal(t, "https://example.com/about", got[1].FullURL)
	assert.False(t, got[1].IsHTML5)
	assert.Equal(t, time.UTC, got[1].Timestamp.Location())
	assert.True(t, rows.closed)
	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0].sql, "ORDER BY full_url")
	assert.Equal(t, []any{"example.com"}, q.queries[0].args)
}

func TestListByHost_Errors(t *testing.T) {
	row := fakeRow{values: []any{"example.com", "https://example.com/", true, time.Now()}}
	tests := []struct {
		name string
		q    *fakeQuerier
	}{
		{name: "query_fails", q: &fakeQuerier{queryErr: errors.New("connection reset")}},
		{name: "scan_fails", q: &fakeQuerier{rows: &fakeRows{rows: []fakeRow{row}, scanErrAt: 1}}},
		{name: "rows_err", q: &fakeQuerier{rows: &fakeRows{err: errors.New("canceled mid-stream")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTestedURLRepo(tt.q).ListByHost(context.Background(), "example.com")
			assert.Error(t, err)
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	q := &fakeQuerier{}
	require.NoError(t, NewTestedURLRepo(q).EnsureSchema(context.Background()))
	require.Len(t, q.execs, 1)
	assert.True(t, strings.Contains(q.execs[0].sql, "CREATE TABLE IF NOT EXISTS tested_urls"))

	q = &fakeQuerier{execErr: errors.New("permission denied")}
	assert.Error(t, NewTestedURLRepo(q).EnsureSchema(context.Background()))
}

func TestStore_Integration(t *testing.T) {
	connString := os.Getenv("TEST_POSTGRES_URL")
	if connString == "" {
		t.Skip("TEST_POSTGRES_URL not set, skipping postgres integration test")
	}
	ctx := context.Background()

	store, err := Open(ctx, connString)
	require.NoError(t, err)
	defer store.Close()

	host := "it-" + time.Now().Format("150405.000000") + ".example"
	defer store.pool.Exec(ctx, `DELETE FROM tested_urls WHERE host = $1`, host)

	fullURL := "https://" + host + "/"
	_, err = store.FindByKey(ctx, host, fullURL)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ts := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.Upsert(ctx, &entity.TestedURL{Host: host, FullURL: fullURL, IsHTML5: false, Timestamp: ts}))
	require.NoError(t, store.Upsert(ctx, &entity.TestedURL{Host: host, FullURL: fullURL, IsHTML5: true, Timestamp: ts}))

	got, err := store.FindByKey(ctx, host, fullURL)
	require.NoError(t, err)
	assert.True(t, got.IsHTML5)
	assert.True(t, ts.Equal(got.Timestamp))

	list, err := store.ListByHost(ctx, host)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, store.Ping(ctx))
}
