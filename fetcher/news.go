package fetcher

import (
	"context"
	"fmt"
	"net/url"
)

type headlinesResponse struct {
	TotalResults int `json:"totalResults"`
	Articles     []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// News fetches the top headline per requested category from NewsAPI.
// Categories with no results are left out of the payload.
//
// Argument order: News-Topic.
func (s *Services) News(ctx context.Context, args ...[]string) (any, error) {
	news := make(map[string]any)
	if len(args) == 0 {
		return news, nil
	}

	for _, topic := range args[0] {
		if topic == "" {
			continue
		}

		var headlines headlinesResponse
		reqURL := fmt.Sprintf("%s/v2/top-headlines?category=%s&pageSize=1&apiKey=%s",
			s.cfg.NewsBaseURL, url.QueryEscape(topic), s.cfg.NewsAPIKey)
		if err := s.getJSON(ctx, reqURL, &headlines); err != nil {
			return nil, fmt.Errorf("news headlines %q: %w", topic, err)
		}
		if headlines.TotalResults == 0 {
			continue
		}

		articles := make([]any, 0, len(headlines.Articles))
		for _, article := range headlines.Articles {
			articles = append(articles, map[string]any{
				"title":       article.Title,
				"source":      article.URL,
				"publishedAt": article.PublishedAt,
			})
		}
		news[topic] = articles
	}

	return news, nil
}
