package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order when parsing a stored bill date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// frenchMonths holds the first three letters of each French short month name.
var frenchMonths = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// ParseDate parses a stored bill date.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// FormatDate renders a stored date as "<day> <Mon>. <yy>", e.g. "1 Jan. 22".
func FormatDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), frenchMonths[t.Month()-1], t.Year()%100), nil
}
