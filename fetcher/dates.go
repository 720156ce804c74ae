package fetcher

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// NormalizeDate converts the date formats users actually type into
// YYYY-MM-DD: an already-normalized date passes through, DD.MM.YYYY is
// converted, and DD.MM. gets the current year appended.
func NormalizeDate(raw string) (string, error) {
	return normalizeDateAt(raw, time.Now())
}

func normalizeDateAt(raw string, now time.Time) (string, error) {
	if _, err := time.Parse(dateLayout, raw); err == nil {
		return raw, nil
	}
	if t, err := time.Parse("02.01.2006", raw); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse("02.01.2006", fmt.Sprintf("%s%d", raw, now.Year())); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}
