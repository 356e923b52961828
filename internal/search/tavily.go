package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const TavilyURL = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey   string
	Endpoint string
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewTavily(apiKey, depth string, client *http.Client) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{
		APIKey:   apiKey,
		Endpoint: TavilyURL,
		Depth:    depth,
		client:   client,
		limiter:  limiterFor("tavily:"+apiKey, rate.Limit(5), 5),
	}
}

func (t *Tavily) Name() string {
	return "tavily"
}

func (t *Tavily) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := validateQuery(t.Name(), query); err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.APIKey) == "" {
		return nil, retrievalErr(t.Name(), query, errors.New("API key is missing"))
	}
	limit = normalizeLimit(limit)

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"api_key":      t.APIKey,
		"search_depth": t.Depth,
		"max_results":  limit,
	})
	if err != nil {
		return nil, retrievalErr(t.Name(), query, err)
	}

	resp, err := doPaced(ctx, t.client, t.limiter, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
		return req, nil
	})
	if err != nil {
		return nil, retrievalErr(t.Name(), query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, retrievalErr(t.Name(), query, fmt.Errorf("unexpected status: %v", resp.Status))
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, retrievalErr(t.Name(), query, fmt.Errorf("failed to decode response: %w", err))
	}

	results := make([]Result, 0, min(limit, len(response.Results)))
	for _, r := range response.Results {
		if len(results) >= limit {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: collapse(r.Content)})
	}
	return results, nil
}
