// Package sanitize provides text sanitization utilities.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	unsafeObjectName = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage.
func Text(s string) string {
	return StripHTML(s)
}

// FileName reduces an uploaded file name to its base name without markup,
// for display and audit rows.
func FileName(name string) string {
	cleaned := strings.ReplaceAll(StripHTML(name), "\\", "/")
	if cleaned == "" {
		return ""
	}
	base := filepath.Base(cleaned)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// ObjectName turns a file name into a string safe to use inside an object key.
// Letters of any script are kept so Korean file names stay readable.
func ObjectName(name string) string {
	cleaned := unsafeObjectName.ReplaceAllString(FileName(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
