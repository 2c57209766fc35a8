// Package linkscan finds web links in chat message text.
package linkscan

import "regexp"

// urlPattern matches http(s) links: optional www., a host ending in a
// 2-6 letter TLD, then any path/query characters.
var urlPattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{2,256}\.[a-z]{2,6}\b([-a-zA-Z0-9@:%_+.~#?&/=]*)`)

// Extract returns every link in text in order of first occurrence.
// Duplicates are kept; the result is nil when there are no links.
func Extract(text string) []string {
	return urlPattern.FindAllString(text, -1)
}
