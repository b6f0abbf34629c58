package entity

import "time"

// TestedURL is the cached doctype verdict for a single URL.
// Entries are partitioned by Host and unique by FullURL within a host.
type TestedURL struct {
	Host      string    `json:"host"`
	FullURL   string    `json:"full_url"`
	IsHTML5   bool      `json:"is_html5"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTestedURL builds a fresh entry for the given URL, stamped at now.
func NewTestedURL(u ValidURL, isHTML5 bool, now time.Time) *TestedURL {
	return &TestedURL{
		Host:      u.Host,
		FullURL:   u.Canonical,
		IsHTML5:   isHTML5,
		Timestamp: now.UTC(),
	}
}

// IsFresh reports whether the entry was written less than window before now.
func (t *TestedURL) IsFresh(now time.Time, window time.Duration) bool {
	return now.Sub(t.Timestamp) < window
}
