package request

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"
)

const (
	urlParam     = "url"
	maxBodyBytes = 64 << 10
)

// CheckRequest is the JSON body accepted by POST /api/ishtml5.
// A nil URL means the field was absent.
type CheckRequest struct {
	URL *string `json:"url"`
}

// URLFromQuery returns the first query value whose key equals "url",
// case-insensitively, in the order the pairs appear. ok is false when no
// such key is present.
func URLFromQuery(rawQuery string) (value string, ok bool) {
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || !strings.EqualFold(key, urlParam) {
			continue
		}
		if unescaped, err := url.QueryUnescape(v); err == nil {
			v = unescaped
		}
		return v, true
	}
	return "", false
}

// URLFromBody decodes a CheckRequest from body. A missing, empty or
// undecodable body counts as an absent url.
func URLFromBody(body io.Reader) (value string, ok bool) {
	if body == nil {
		return "", false
	}
	var req CheckRequest
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&req); err != nil {
		return "", false
	}
	if req.URL == nil {
		return "", false
	}
	return *req.URL, true
}
