package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type hotellookEntry struct {
	HotelName string   `json:"hotelName"`
	PriceFrom *float64 `json:"priceFrom"`
	Stars     *int     `json:"stars"`
}

// Hotels queries the Hotellook price cache for up to three hotels in the
// destination city over the requested stay.
//
// Argument order: Hotel-Destination, Check-in-Date, Check-out-Date.
func (s *Services) Hotels(ctx context.Context, args ...[]string) (any, error) {
	city, ok := firstArg(args, 0)
	if !ok {
		return errorPayload("kein Zielort angegeben"), nil
	}

	checkIn, err := normalizedArg(args, 1)
	if err != nil {
		return errorPayload("ungültiges Check-in-Datum"), nil
	}
	checkOut, err := normalizedArg(args, 2)
	if err != nil {
		return errorPayload("ungültiges Check-out-Datum"), nil
	}

	query := url.Values{}
	query.Set("location", city)
	query.Set("currency", "eur")
	query.Set("checkIn", checkIn)
	query.Set("checkOut", checkOut)
	query.Set("limit", "3")

	var raw json.RawMessage
	reqURL := fmt.Sprintf("%s/api/v2/cache.json?%s", s.cfg.HotellookBaseURL, query.Encode())
	if err := s.getJSON(ctx, reqURL, &raw); err != nil {
		return nil, fmt.Errorf("hotel search %q: %w", city, err)
	}

	// An unknown location comes back as an error object instead of a list.
	var entries []hotellookEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return map[string]any{}, nil
	}

	hotels := make(map[string]any, len(entries))
	for _, entry := range entries {
		details := map[string]any{}
		if entry.PriceFrom != nil {
			details["price"] = *entry.PriceFrom
		} else {
			details["price"] = "keine Angabe"
		}
		if entry.Stars != nil {
			details["stars"] = *entry.Stars
		} else {
			details["stars"] = "keine Angabe"
		}
		hotels[entry.HotelName] = details
	}

	return hotels, nil
}

func normalizedArg(args [][]string, i int) (string, error) {
	raw, ok := firstArg(args, i)
	if !ok {
		return "", fmt.Errorf("argument %d missing", i)
	}
	return NormalizeDate(raw)
}
