package validate

import (
	"regexp"
	"strings"
)

var (
	reID  = regexp.MustCompile(`^[A-Za-z0-9@:/._ '\-]{1,128}$`)
	reSID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ProductID validates a product identifier. Generated composite ids can
// carry spaces and punctuation from make/model names, so the charset is
// wider than a plain slug.
func ProductID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// SessionID validates the sid cookie / chat session id shape.
func SessionID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reSID.MatchString(s)
}

// ClampQty keeps an add-to-cart quantity in a sane range, defaulting to 1.
func ClampQty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}
