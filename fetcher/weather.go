package fetcher

import (
	"context"
	"fmt"
	"net/url"
)

type forecastResponse struct {
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelslikeC float64 `json:"feelslike_c"`
	} `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Day struct {
				MaxtempC float64 `json:"maxtemp_c"`
				MintempC float64 `json:"mintemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Weather fetches the current conditions and today's forecast per city from
// WeatherAPI. Unknown locations are skipped.
//
// Argument order: City.
func (s *Services) Weather(ctx context.Context, args ...[]string) (any, error) {
	cities := make(map[string]any)
	if len(args) == 0 {
		return cities, nil
	}

	for _, city := range args[0] {
		if city == "" {
			continue
		}

		var forecast forecastResponse
		reqURL := fmt.Sprintf("%s/v1/forecast.json?key=%s&q=%s",
			s.cfg.WeatherBaseURL, s.cfg.WeatherAPIKey, url.QueryEscape(city))
		if err := s.getJSON(ctx, reqURL, &forecast); err != nil {
			return nil, fmt.Errorf("weather forecast %q: %w", city, err)
		}
		if forecast.Error != nil {
			continue
		}

		entry := map[string]any{
			"temperature": forecast.Current.TempC,
			"feelslike":   forecast.Current.FeelslikeC,
		}
		if len(forecast.Forecast.Forecastday) > 0 {
			entry["max_temp"] = forecast.Forecast.Forecastday[0].Day.MaxtempC
			entry["min_temp"] = forecast.Forecast.Forecastday[0].Day.MintempC
		}
		cities[city] = entry
	}

	return cities, nil
}
