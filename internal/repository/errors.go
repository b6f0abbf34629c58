package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when no entry exists for a key.
var ErrNotFound = errors.New("tested url not found")

// FetchError describes a failed outbound fetch.
type FetchError struct {
	URL string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CacheError describes a failed cache read or write.
type CacheError struct {
	Op  string // "lookup" or "upsert"
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
