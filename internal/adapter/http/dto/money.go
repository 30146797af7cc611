package dto

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"teenpay-backend/pkg/apperror"
)

var amountRe = regexp.MustCompile(`^\d{1,16}(\.\d{1,2})?$`)

// FormatCents renders an int64 cent amount as a 2-decimal string,
// e.g. 1050 -> "10.50", -1050 -> "-10.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseAmount converts a positive decimal string with at most two
// fractional digits ("10", "10.5", "10.50") into cents.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !amountRe.MatchString(s) {
		return 0, apperror.ErrInvalidAmount()
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, apperror.ErrInvalidAmount()
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, apperror.ErrInvalidAmount()
	}

	cents := w*100 + f
	if cents <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	return cents, nil
}
