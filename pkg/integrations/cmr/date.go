package cmr

import (
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/simplecmr/pkg/errors"
)

// TemporalLayout is the timestamp layout used in temporal range parameters.
const TemporalLayout = "2006-01-02T15:04:05Z"

// dateLayouts are tried in order after the integer parse.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000000",
}

// DecodeDate parses a date token.
//
// An integer token (optionally negative) is read as Unix seconds, except
// for an eight-digit token that is a valid YYYYMMDD calendar date, which is
// read as that date. Other tokens are matched against YYYYMMDD, YYYY-MM-DD,
// YYYY-MM-DDTHH:MM:SS and YYYY-MM-DDTHH:MM:SS.f, where the fraction has one
// to six digits.
//
// The result is always in UTC. An unrecognized token returns an
// INVALID_DATE_FORMAT error naming it.
func DecodeDate(token string) (time.Time, error) {
	s := strings.TrimSpace(token)
	if isInteger(s) {
		if len(s) == 8 && isDigits(s) {
			if t, err := time.Parse(dateLayouts[0], s); err == nil {
				return t, nil
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
	}
	if !validFraction(s) {
		return time.Time{}, errors.New(errors.ErrCodeInvalidDateFormat, "invalid date format: %q", token)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidDateFormat, "invalid date format: %q", token)
}

func isInteger(s string) bool {
	return isDigits(strings.TrimPrefix(s, "-"))
}

// validFraction reports whether any fractional seconds in s have at most
// six digits. time.Parse accepts longer fractions after a seconds field.
func validFraction(s string) bool {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return true
	}
	frac := s[i+1:]
	return len(frac) <= 6 && isDigits(frac)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
