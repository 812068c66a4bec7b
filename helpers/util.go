package helpers

import (
	"net/url"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace into single spaces and trims the ends
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// HostOf returns the hostname of a raw URL, or "" if it cannot be parsed
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ResolveURL resolves a possibly relative href against a base URL
func ResolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
