package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Timetable downloads the Rapla calendar export and returns the events on
// the requested dates, keyed by event summary. Times arrive in the
// calendar's local timezone (Europe/Berlin in the exported feed).
//
// Argument order: Date.
func (s *Services) Timetable(ctx context.Context, args ...[]string) (any, error) {
	events := make(map[string]any)
	if len(args) == 0 || s.cfg.RaplaURL == "" {
		return events, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.RaplaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rapla calendar: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	for _, raw := range args[0] {
		if raw == "" {
			continue
		}
		date, err := NormalizeDate(raw)
		if err != nil {
			events[raw] = errorPayload("ungültiges Datum: %s", raw)
			continue
		}
		for summary, event := range parseICSEvents(string(body), date) {
			events[summary] = event
		}
	}

	return events, nil
}

// parseICSEvents walks the ICS line by line and collects the VEVENTs whose
// start date matches the requested date.
func parseICSEvents(ics, date string) map[string]any {
	events := make(map[string]any)
	var current map[string]string

	for _, line := range strings.Split(ics, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			current = make(map[string]string)

		case current == nil:
			continue

		case strings.HasPrefix(line, "DTSTAMP:"):
			stamp := strings.TrimPrefix(line, "DTSTAMP:")
			if day, _, ok := strings.Cut(stamp, "T"); ok && len(day) == 8 {
				current["date"] = day[:4] + "-" + day[4:6] + "-" + day[6:]
			}

		case strings.HasPrefix(line, "SUMMARY:"):
			current["summary"] = strings.TrimPrefix(line, "SUMMARY:")

		case strings.HasPrefix(line, "DTSTART;TZID=Europe/Berlin:"):
			if clock, ok := icsClock(strings.TrimPrefix(line, "DTSTART;TZID=Europe/Berlin:")); ok {
				current["start"] = clock
			}

		case strings.HasPrefix(line, "DTEND;TZID=Europe/Berlin:"):
			if clock, ok := icsClock(strings.TrimPrefix(line, "DTEND;TZID=Europe/Berlin:")); ok {
				current["end"] = clock
			}

		case strings.HasPrefix(line, "LOCATION:"):
			current["location"] = strings.TrimPrefix(line, "LOCATION:")

		case strings.HasPrefix(line, "END:VEVENT"):
			if current["summary"] != "" && current["date"] == date {
				events[current["summary"]] = map[string]any{
					"start":    current["start"],
					"end":      current["end"],
					"location": current["location"],
				}
			}
			current = nil
		}
	}
	return events
}

func icsClock(value string) (string, bool) {
	_, clock, ok := strings.Cut(value, "T")
	if !ok || len(clock) < 4 {
		return "", false
	}
	return clock[:2] + ":" + clock[2:4], true
}
