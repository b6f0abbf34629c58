package usecase

import (
	"errors"
	"net/url"
	"strings"

	"github.com/user/ishtml5-service/internal/entity"
	"github.com/user/ishtml5-service/pkg/utils"
)

var (
	ErrMissingParameter = errors.New("url parameter is missing")
	ErrMalformedURL     = errors.New("url is not a valid http or https url")
)

// ValidateURL checks a raw url parameter and returns its structured form.
// present is false when the request carried no url value at all.
func ValidateURL(raw string, present bool) (entity.ValidURL, error) {
	if !present {
		return entity.ValidURL{}, ErrMissingParameter
	}

	// Scheme check is case-sensitive.
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return entity.ValidURL{}, ErrMalformedURL
	}
	if !isWellFormed(raw) {
		return entity.ValidURL{}, ErrMalformedURL
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return entity.ValidURL{}, ErrMalformedURL
	}

	return entity.ValidURL{
		Scheme:    u.Scheme,
		Host:      utils.HostKey(u),
		Canonical: utils.CanonicalURL(u),
		URL:       u,
	}, nil
}

// isWellFormed reports whether every character of s is allowed by the
// RFC 3986 URI grammar: unreserved, reserved, or a complete percent escape.
// At most one '#' may appear.
func isWellFormed(s string) bool {
	fragments := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c), strings.IndexByte(":/?[]@!$&'()*+,;=", c) >= 0:
		case c == '#':
			fragments++
			if fragments > 1 {
				return false
			}
		case c == '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	return true
}

func isUnreserved(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
