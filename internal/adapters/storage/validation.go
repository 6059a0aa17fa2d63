package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes are the spreadsheet types accepted for lead imports.
// Browsers commonly send .csv as vnd.ms-excel or a bare octet-stream.
var AllowedContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"text/csv":                                                          true,
	"application/csv":                                                   true,
	"text/plain":                                                        true,
	"application/octet-stream":                                          true,
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return ValidateContentType(contentType)
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return ValidateFileSize(sizeBytes, s.maxFileSize)
}

// ValidateContentType checks contentType, ignoring parameters such as charset.
func ValidateContentType(contentType string) error {
	normalized := strings.Split(contentType, ";")[0]
	normalized = strings.TrimSpace(strings.ToLower(normalized))

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks 0 < sizeBytes <= maxFileSize.
func ValidateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize)
	}
	return nil
}
