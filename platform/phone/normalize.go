// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "KR"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	number, ok := parse(input)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// NationalDigits returns the national-format digits of a valid number
// (e.g. "+82 10-1234-5678" -> "01012345678"). Invalid input yields "".
func NationalDigits(input string) string {
	number, ok := parse(input)
	if !ok {
		return ""
	}
	national := phonenumbers.Format(number, phonenumbers.NATIONAL)
	return Digits(national)
}

// Digits strips everything but 0-9.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parse(input string) (*phonenumbers.PhoneNumber, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}
	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return nil, false
	}
	return number, true
}
