package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var stripper = bluemonday.StrictPolicy()

// StripTags removes all markup and returns the remaining text with entities decoded,
// so plain text such as "a < b & c" is stored as written.
func StripTags(input string) string {
	return html.UnescapeString(stripper.Sanitize(input))
}
