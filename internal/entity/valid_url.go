package entity

import "net/url"

// ValidURL is a URL that passed request validation.
type ValidURL struct {
	Scheme string
	// Host is lower-cased and carries no port.
	Host string
	// Canonical is the normalized string form, used as the cache key.
	Canonical string
	URL       *url.URL
}

func (v ValidURL) String() string {
	return v.Canonical
}
