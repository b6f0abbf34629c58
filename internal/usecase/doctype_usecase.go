package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/doctype"
	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/internal/repository"
	"github.com/user/ishtml5-service/pkg/metrics"
)

// Cached verdicts younger than this are served without refetching.
const freshnessWindow = 7 * 24 * time.Hour

// DoctypeResolver decides whether a validated URL declares an HTML5 doctype.
type DoctypeResolver interface {
	Resolve(ctx context.Context, u entity.ValidURL) (bool, error)
}

type doctypeUseCase struct {
	cache   repository.TestedURLRepository
	fetcher repository.DocumentFetcher
	detect  doctype.Detector
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures the resolver.
type Option func(*doctypeUseCase)

// WithDetector overrides the canonical doctype.IsHTML5 detector.
func WithDetector(d doctype.Detector) Option {
	return func(uc *doctypeUseCase) { uc.detect = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(uc *doctypeUseCase) { uc.now = now }
}

// NewDoctypeResolver creates a new DoctypeResolver use case.
func NewDoctypeResolver(
	cache repository.TestedURLRepository,
	fetcher repository.DocumentFetcher,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) DoctypeResolver {
	uc := &doctypeUseCase{
		cache:   cache,
		fetcher: fetcher,
		detect:  doctype.IsHTML5,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Resolve serves a fresh cached verdict, or fetches the document, detects its
// doctype and writes the new verdict back to the cache.
func (uc *doctypeUseCase) Resolve(ctx context.Context, u entity.ValidURL) (bool, error) {
	now := uc.now()

	cached, err := uc.cache.FindByKey(ctx, u.Host, u.Canonical)
	switch {
	case err == nil && cached.IsFresh(now, freshnessWindow):
		uc.metrics.IncCacheLookup("hit")
		uc.logger.Debug("serving cached verdict",
			zap.String("url", u.Canonical),
			zap.Bool("is_html5", cached.IsHTML5),
			zap.Time("tested_at", cached.Timestamp),
		)
		return cached.IsHTML5, nil
	case err == nil:
		uc.metrics.IncCacheLookup("stale")
	case errors.Is(err, repository.ErrNotFound):
		uc.metrics.IncCacheLookup("miss")
	default:
		return false, &repository.CacheError{Op: "lookup", Err: err}
	}

	start := time.Now()
	doc, err := uc.fetcher.Fetch(ctx, u.Canonical)
	uc.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		var fetchErr *repository.FetchError
		if errors.As(err, &fetchErr) {
			return false, err
		}
		return false, &repository.FetchError{URL: u.Canonical, Err: err}
	}

	isHTML5 := uc.detect(doc.Body)
	uc.metrics.IncVerdict(isHTML5)

	if err := uc.cache.Upsert(ctx, entity.NewTestedURL(u, isHTML5, now)); err != nil {
		return false, &repository.CacheError{Op: "upsert", Err: err}
	}

	uc.logger.Info("computed fresh verdict",
		zap.String("url", u.Canonical),
		zap.String("host", u.Host),
		zap.Bool("is_html5", isHTML5),
		zap.Int("status_code", doc.StatusCode),
	)
	return isHTML5, nil
}
