package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
)

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
	Error any `json:"error"`
}

// TravelInfo geocodes the start and destination via Nominatim and asks
// OpenRouteService for directions with the given transport medium.
//
// Argument order: Transport-Medium, Start-Location, Destination-Location.
func (s *Services) TravelInfo(ctx context.Context, args ...[]string) (any, error) {
	medium, ok := firstArg(args, 0)
	if !ok {
		medium = "driving-car"
	}
	start, okStart := firstArg(args, 1)
	dest, okDest := firstArg(args, 2)
	if !okStart || !okDest {
		return errorPayload("Ungültiger Start- oder Zielort"), nil
	}

	startCoords, err := s.geocode(ctx, start)
	if err != nil {
		return nil, err
	}
	destCoords, err := s.geocode(ctx, dest)
	if err != nil {
		return nil, err
	}
	if startCoords == nil || destCoords == nil {
		return errorPayload("Ungültiger Start- oder Zielort"), nil
	}

	reqBody, err := json.Marshal(map[string]any{
		"coordinates": [][]float64{startCoords, destCoords},
	})
	if err != nil {
		return nil, err
	}

	directionsURL := fmt.Sprintf("%s/v2/directions/%s/geojson", s.cfg.OpenRouteBaseURL, url.PathEscape(medium))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, directionsURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", s.cfg.OpenRouteAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var directions directionsResponse
	if err := json.Unmarshal(body, &directions); err != nil || len(directions.Features) == 0 {
		return errorPayload("%s", string(body)), nil
	}

	segments := directions.Features[0].Properties.Segments
	if len(segments) == 0 {
		return errorPayload("keine Route gefunden"), nil
	}

	return map[string]any{
		"distance_km":  math.Round(segments[0].Distance/10) / 100,
		"duration_min": math.Round(segments[0].Duration/0.6) / 100,
	}, nil
}

// geocode resolves a place name to [lon, lat], or nil when nothing matches.
// Calls are rate limited to stay within Nominatim's usage policy.
func (s *Services) geocode(ctx context.Context, place string) ([]float64, error) {
	if err := s.geocodeLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	geocodeURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", s.cfg.NominatimBaseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL, nil)
	if err != nil {
		return nil, err
	}
	// Nominatim rejects requests without an identifying agent.
	req.Header.Set("User-Agent", "everyday-pda route_planner")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", place, err)
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", place, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(results[0].Lat, "%f", &lat); err != nil {
		return nil, fmt.Errorf("geocode %q: bad latitude %q", place, results[0].Lat)
	}
	if _, err := fmt.Sscanf(results[0].Lon, "%f", &lon); err != nil {
		return nil, fmt.Errorf("geocode %q: bad longitude %q", place, results[0].Lon)
	}
	return []float64{lon, lat}, nil
}
