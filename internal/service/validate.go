package service

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/festa-do-viso/internal/model"
)

// maxNameLength matches the width of the name columns.
const maxNameLength = 100

// NormalizeName trims raw and checks the length rule shared by participant
// and sheet names.  Length is counted in characters, not bytes.  Invalid
// UTF-8 and control characters are rejected.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if !utf8.ValidString(name) || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", ErrInvalidName
	}
	n := utf8.RuneCountInString(name)
	if n < model.MinNameLength {
		return "", ErrInvalidName
	}
	if n > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// NormalizeContact trims raw and requires exactly nine ASCII digits.
func NormalizeContact(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if len(c) != 9 {
		return "", ErrInvalidContact
	}
	for i := 0; i < len(c); i++ {
		if c[i] < '0' || c[i] > '9' {
			return "", ErrInvalidContact
		}
	}
	return c, nil
}

// ValidateNumber checks that n is on the sheet grid.
func ValidateNumber(n int) error {
	if n < model.MinNumber || n > model.MaxNumber {
		return ErrInvalidNumber
	}
	return nil
}

// ParseDrawDate parses a YYYY-MM-DD calendar date.
func ParseDrawDate(s string) (time.Time, error) {
	d, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}
