package fetcher

import (
	"context"
	"fmt"
	"net/url"
)

type symbolSearchResponse struct {
	Data []struct {
		Symbol   string `json:"symbol"`
		Exchange string `json:"exchange"`
	} `json:"data"`
}

type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

type quoteResponse struct {
	Change string `json:"change"`
	Code   int    `json:"code"`
}

// StockPrices looks up each company name on Twelve Data and returns the
// latest price, its timestamp and the change over the last hour, keyed by
// the requested name. Names without a NASDAQ listing are skipped.
//
// Argument order: Stock-Name.
func (s *Services) StockPrices(ctx context.Context, args ...[]string) (any, error) {
	stocks := make(map[string]any)
	if len(args) == 0 {
		return stocks, nil
	}

	for _, name := range args[0] {
		if name == "" {
			continue
		}

		var search symbolSearchResponse
		searchURL := fmt.Sprintf("%s/symbol_search?symbol=%s&apikey=%s",
			s.cfg.TwelveDataBaseURL, url.QueryEscape(name), s.cfg.TwelveDataAPIKey)
		if err := s.getJSON(ctx, searchURL, &search); err != nil {
			return nil, fmt.Errorf("stock symbol search %q: %w", name, err)
		}

		symbol := ""
		for _, match := range search.Data {
			if match.Exchange == "NASDAQ" {
				symbol = match.Symbol
				break
			}
		}
		if symbol == "" {
			continue
		}

		var series timeSeriesResponse
		seriesURL := fmt.Sprintf("%s/time_series?symbol=%s&interval=1min&apikey=%s",
			s.cfg.TwelveDataBaseURL, url.QueryEscape(symbol), s.cfg.TwelveDataAPIKey)
		if err := s.getJSON(ctx, seriesURL, &series); err != nil {
			return nil, fmt.Errorf("stock time series %q: %w", symbol, err)
		}
		if len(series.Values) == 0 {
			continue
		}

		var quote quoteResponse
		quoteURL := fmt.Sprintf("%s/quote?symbol=%s&interval=1h&apikey=%s",
			s.cfg.TwelveDataBaseURL, url.QueryEscape(symbol), s.cfg.TwelveDataAPIKey)
		if err := s.getJSON(ctx, quoteURL, &quote); err != nil {
			return nil, fmt.Errorf("stock quote %q: %w", symbol, err)
		}
		if quote.Code == 400 {
			continue
		}

		stocks[name] = map[string]any{
			"price":           series.Values[0].Close,
			"timestamp":       series.Values[0].Datetime,
			"changeFrom1hour": quote.Change,
		}
	}

	return stocks, nil
}
