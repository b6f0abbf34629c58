package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/repository"
)

// CollyFetcher implements repository.DocumentFetcher with a colly collector.
// Each Fetch runs on a clone, so concurrent calls never share callbacks.
type CollyFetcher struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewCollyFetcher creates a fetcher that sends userAgent and gives up on a
// single request after timeout.
func NewCollyFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.SetRequestTimeout(timeout)
	return &CollyFetcher{base: c, logger: logger}
}

// Fetch performs one GET. Any status outside 2xx is reported as
// *repository.FetchError, as are transport failures and cancellation.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &repository.FetchError{URL: rawURL, Err: err}
	}

	c := f.base.Clone()
	c.Context = ctx
	// Every status reaches OnResponse; success is decided below.
	c.ParseHTTPErrorResponse = true
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	var doc *repository.Document
	var errStatus int
	c.OnResponse(func(r *colly.Response) {
		doc = &repository.Document{StatusCode: r.StatusCode, Body: string(r.Body)}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			errStatus = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		f.logger.Warn("fetch failed",
			zap.String("url", rawURL),
			zap.Int("status_code", errStatus),
			zap.Error(err),
		)
		return nil, &repository.FetchError{URL: rawURL, StatusCode: errStatus, Err: err}
	}
	if doc == nil {
		return nil, &repository.FetchError{URL: rawURL, Err: errors.New("no response received")}
	}
	if doc.StatusCode < http.StatusOK || doc.StatusCode >= http.StatusMultipleChoices {
		f.logger.Warn("fetch returned non-success status",
			zap.String("url", rawURL),
			zap.Int("status_code", doc.StatusCode),
		)
		return nil, &repository.FetchError{URL: rawURL, StatusCode: doc.StatusCode, Err: errors.New(http.StatusText(doc.StatusCode))}
	}
	return doc, nil
}
