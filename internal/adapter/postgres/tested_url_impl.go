package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS tested_urls (
		host      TEXT        NOT NULL,
		full_url  TEXT        NOT NULL,
		is_html5  BOOLEAN     NOT NULL,
		tested_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (host, full_url)
	);
`

// Querier is the subset of *pgxpool.Pool used by the repository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TestedURLRepoImpl provides a concrete implementation for the TestedURLRepository interface using PostgreSQL.
type TestedURLRepoImpl struct {
	db Querier
}

// NewTestedURLRepo creates a new instance of TestedURLRepoImpl.
func NewTestedURLRepo(db Querier) *TestedURLRepoImpl {
	return &TestedURLRepoImpl{db: db}
}

// EnsureSchema creates the tested_urls table if it does not exist.
func (r *TestedURLRepoImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tested_urls table: %w", err)
	}
	return nil
}

// FindByKey retrieves the entry for (host, fullURL).
func (r *TestedURLRepoImpl) FindByKey(ctx context.Context, host, fullURL string) (*entity.TestedURL, error) {
	query := `
		SELECT host, full_url, is_html5, tested_at
		FROM tested_urls
		WHERE host = $1 AND full_url = $2;
	`
	var t entity.TestedURL
	err := r.db.QueryRow(ctx, query, host, fullURL).Scan(&t.Host, &t.FullURL, &t.IsHTML5, &t.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	t.Timestamp = t.Timestamp.UTC()
	return &t, nil
}

// Upsert stores or replaces the entry for (host, full_url).
func (r *TestedURLRepoImpl) Upsert(ctx context.Context, t *entity.TestedURL) error {
	query := `
		INSERT INTO tested_urls (host, full_url, is_html5, tested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (host, full_url) DO UPDATE SET
			is_html5 = EXCLUDED.is_html5,
			tested_at = EXCLUDED.tested_at;
	`
	_, err := r.db.Exec(ctx, query, t.Host, t.FullURL, t.IsHTML5, t.Timestamp)
	return err
}

// ListByHost returns every entry for host, ordered by full_url.
func (r *TestedURLRepoImpl) ListByHost(ctx context.Context, host string) ([]*entity.TestedURL, error) {
	query := `
		SELECT host, full_url, is_html5, tested_at
		FROM tested_urls
		WHERE host = $1
		ORDER BY full_url ASC;
	`
	rows, err := r.db.Query(ctx, query, host)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.TestedURL
	for rows.Next() {
		var t entity.TestedURL
		if err := rows.Scan(&t.Host, &t.FullURL, &t.IsHTML5, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Timestamp = t.Timestamp.UTC()
		out = append(out, &t)
	}
	return out, rows.Err()
}
