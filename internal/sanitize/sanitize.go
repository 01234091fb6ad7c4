// Package sanitize strips markup from user-supplied free text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds the sanitize/unescape loop for nested entity encodings.
const maxPasses = 4

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag from s, drops the contents of script and
// style elements, and trims surrounding whitespace. The result is plain
// text, so "Bills & Co" is stored as typed. Entity-encoded markup is decoded
// and sanitized again until the text is stable; if it never settles the
// escaped form is returned.
func Text(s string) string {
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(policy.Sanitize(out))
}
