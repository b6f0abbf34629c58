// Package doctype inspects the leading bytes of a document for an HTML5
// doctype declaration. It scans the declaration token only and never builds a
// document tree.
package doctype

import "strings"

const (
	keyword    = "<!doctype"
	html5Token = "<!doctype html>"
	rootName   = "html"
	byteOrder  = "\ufeff"
)

// Detector reports whether a document body declares an HTML5 doctype.
type Detector func(body string) bool

// Mode names a Detector.
type Mode string

const (
	// ModeStrict checks the doctype keyword and the declared root name.
	ModeStrict Mode = "strict"
	// ModePrefix only matches the literal "<!doctype html>" prefix.
	ModePrefix Mode = "prefix"
)

// ForMode returns the detector for m. Unknown modes fall back to strict.
func ForMode(m Mode) Detector {
	if m == ModePrefix {
		return HasHTML5Prefix
	}
	return IsHTML5
}

// Normalize trims surrounding whitespace and a leading byte order mark.
func Normalize(body string) string {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, byteOrder)
	return strings.TrimSpace(body)
}

// IsHTML5 reports whether the body starts with a doctype declaration whose
// root element name is "html", case-insensitively.
func IsHTML5(body string) bool {
	name, ok := DeclaredName(body)
	return ok && strings.EqualFold(name, rootName)
}

// HasHTML5Prefix reports whether the body starts with "<!doctype html>",
// case-insensitively.
func HasHTML5Prefix(body string) bool {
	return hasPrefixFold(Normalize(body), html5Token)
}

// DeclaredName returns the root element name from a leading doctype
// declaration. ok is false when the body does not start with one, or when the
// declaration names no root element.
func DeclaredName(body string) (name string, ok bool) {
	body = Normalize(body)
	if !hasPrefixFold(body, keyword) {
		return "", false
	}
	rest := body[len(keyword):]

	// The keyword must be followed by whitespace; "<!doctypehtml>" is not a declaration.
	trimmed := strings.TrimLeft(rest, " \t\r\n\f")
	if len(trimmed) == len(rest) {
		return "", false
	}

	end := strings.IndexAny(trimmed, " \t\r\n\f>")
	if end == -1 {
		// Unterminated declaration.
		return "", false
	}
	if end == 0 {
		return "", false
	}
	return trimmed[:end], true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
