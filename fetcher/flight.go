package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"
)

type locationsResponse struct {
	Data []struct {
		IataCode string `json:"iataCode"`
	} `json:"data"`
}

type flightOffersResponse struct {
	Data []struct {
		Itineraries []struct {
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
				Departure   struct {
					At string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					At string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"price"`
	} `json:"data"`
}

// Flights resolves the origin and destination cities to IATA codes and
// queries Amadeus flight offers (max three, EUR). Authentication uses the
// OAuth2 client-credentials flow against the Amadeus token endpoint.
//
// Argument order: Start-Airport, Destination-Airport, Departure-Date,
// Return-Date.
func (s *Services) Flights(ctx context.Context, args ...[]string) (any, error) {
	origin, okOrigin := firstArg(args, 0)
	dest, okDest := firstArg(args, 1)
	if !okOrigin || !okDest {
		return errorPayload("Start oder Ziel fehlt"), nil
	}

	departure, err := normalizedArg(args, 2)
	if err != nil {
		return errorPayload("ungültiges Abflugdatum"), nil
	}
	returnDate := ""
	if raw, ok := firstArg(args, 3); ok {
		returnDate, err = NormalizeDate(raw)
		if err != nil {
			return errorPayload("ungültiges Rückflugdatum"), nil
		}
	}

	authClient := s.amadeusClient(ctx)

	originIata, err := s.cityToIata(ctx, authClient, origin)
	if err != nil {
		return errorPayload("%v", err), nil
	}
	destIata, err := s.cityToIata(ctx, authClient, dest)
	if err != nil {
		return errorPayload("%v", err), nil
	}

	query := url.Values{}
	query.Set("originLocationCode", originIata)
	query.Set("destinationLocationCode", destIata)
	query.Set("departureDate", departure)
	query.Set("adults", "1")
	query.Set("currencyCode", "EUR")
	query.Set("max", "3")
	if returnDate != "" {
		query.Set("returnDate", returnDate)
	}

	offersURL := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", s.cfg.AmadeusBaseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, offersURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := authClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight offers: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return map[string]any{"error": "Flight search failed.", "details": string(body)}, nil
	}

	var offers flightOffersResponse
	if err := unmarshalJSON(body, &offers); err != nil {
		return nil, err
	}
	if len(offers.Data) == 0 {
		return errorPayload("No flight data available."), nil
	}

	flights := make([]any, 0, 3)
	for i, offer := range offers.Data {
		if i >= 3 {
			break
		}
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		segment := offer.Itineraries[0].Segments[0]
		flights = append(flights, map[string]any{
			"flight_number": segment.CarrierCode,
			"airline":       segment.CarrierCode,
			"departure":     segment.Departure.At,
			"arrival":       segment.Arrival.At,
			"price":         offer.Price.GrandTotal,
		})
	}

	return map[string]any{"flights": flights}, nil
}

// amadeusClient returns an HTTP client that transparently obtains and
// refreshes the client-credentials access token.
func (s *Services) amadeusClient(ctx context.Context) *http.Client {
	config := clientcredentials.Config{
		ClientID:     s.cfg.AmadeusClientID,
		ClientSecret: s.cfg.AmadeusClientSecret,
		TokenURL:     s.cfg.AmadeusBaseURL + "/v1/security/oauth2/token",
	}
	return config.Client(ctx)
}

func (s *Services) cityToIata(ctx context.Context, client *http.Client, city string) (string, error) {
	locationsURL := fmt.Sprintf("%s/v1/reference-data/locations?keyword=%s&subType=AIRPORT",
		s.cfg.AmadeusBaseURL, url.QueryEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locationsURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("iata lookup %q: %w", city, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var locations locationsResponse
	if err := unmarshalJSON(body, &locations); err != nil {
		return "", err
	}
	if len(locations.Data) == 0 {
		return "", fmt.Errorf("no IATA code found for city: %s", city)
	}
	return locations.Data[0].IataCode, nil
}
