package assistant

import (
	"strconv"
	"time"
)

// stockChangeThreshold is the absolute hourly change (in percent) above
// which a stock move is worth a proactive push. Strictly greater than.
const stockChangeThreshold = 1.0

// newsTimestampLayout is the strict publish timestamp format; anything else
// is treated as non-significant rather than an error.
const newsTimestampLayout = "2006-01-02T15:04:05Z"

// SignificantStocks returns the entries of a stock payload whose absolute
// change over the last hour exceeds the threshold. The payload is the stock
// fetcher's map of name to quote; missing or unparsable changeFrom1hour
// fields make an entry non-significant.
func SignificantStocks(payload any) map[string]any {
	stocks, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	significant := make(map[string]any)
	for name, entry := range stocks {
		quote, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		change, ok := quote["changeFrom1hour"].(string)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(change, 64)
		if err != nil {
			continue
		}
		if v > stockChangeThreshold || -v > stockChangeThreshold {
			significant[name] = quote
		}
	}
	return significant
}

// RecentNews returns the lead article of every category published within
// the last hour: the age (now minus publish timestamp, in UTC) must lie in
// [0, 1h). An article stamped right at now counts, one exactly an hour old
// does not. Future timestamps and malformed ones fall outside the window.
func RecentNews(payload any, now time.Time) []any {
	news, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	var recent []any
	for _, entry := range news {
		articles, ok := entry.([]any)
		if !ok || len(articles) == 0 {
			continue
		}
		lead, ok := articles[0].(map[string]any)
		if !ok {
			continue
		}
		publishedAt, ok := lead["publishedAt"].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(newsTimestampLayout, publishedAt)
		if err != nil {
			continue
		}
		age := now.UTC().Sub(t)
		if age >= 0 && age < time.Hour {
			recent = append(recent, lead)
		}
	}
	return recent
}
