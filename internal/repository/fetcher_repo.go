package repository

import "context"

// Document is a successfully fetched response.
type Document struct {
	StatusCode int
	Body       string
}

// DocumentFetcher performs a single HTTP GET for a URL.
type DocumentFetcher interface {
	// Fetch returns a *FetchError on transport failure, non-success status or unreadable body.
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}
