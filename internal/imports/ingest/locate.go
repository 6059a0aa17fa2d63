package ingest

import "regexp"

// dataStartScanRows bounds how many leading rows are inspected for the data start.
const dataStartScanRows = 10

// denseRowThreshold: a row with more non-empty values than this is treated as data.
const denseRowThreshold = 5

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2,4}-\d{2,4}-\d{4}`),
	regexp.MustCompile(`010-\d{4}-\d{4}`),
}

// LooksLikePhone reports whether value contains a hyphenated phone number.
func LooksLikePhone(value string) bool {
	for _, pattern := range phonePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// LocateDataStart returns the index of the first of the leading rows that holds
// a phone number or more than five values. Title and legend rows before it are
// skipped by the caller. Zero when no early row qualifies.
func LocateDataStart(rows []RawRow) int {
	limit := min(dataStartScanRows, len(rows))
	for i := 0; i < limit; i++ {
		values := rows[i].Values()
		if len(values) > denseRowThreshold {
			return i
		}
		for _, value := range values {
			if LooksLikePhone(value) {
				return i
			}
		}
	}
	return 0
}
