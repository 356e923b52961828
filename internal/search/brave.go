package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const BraveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave's api caps count at 20.
const braveMaxCount = 20

// Brave uses the Brave Search API. An API key is required via X-Subscription-Token.
type Brave struct {
	APIKey   string
	Endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewBrave constructs a Brave search provider. Instances sharing an API key
// share a 1 req/s limiter, which is the free tier limit.
func NewBrave(apiKey string, client *http.Client) *Brave {
	return &Brave{
		APIKey:   apiKey,
		Endpoint: BraveURL,
		client:   client,
		limiter:  limiterFor("brave:"+apiKey, rate.Limit(1), 1),
	}
}

func (b *Brave) Name() string {
	return "brave"
}

func (b *Brave) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := validateQuery(b.Name(), query); err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.APIKey) == "" {
		return nil, retrievalErr(b.Name(), query, errors.New("API key is missing"))
	}
	limit = normalizeLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(min(limit, braveMaxCount)))
	endpoint := b.Endpoint + "?" + params.Encode()

	resp, err := doPaced(ctx, b.client, b.limiter, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Subscription-Token", b.APIKey)
		return req, nil
	})
	if err != nil {
		return nil, retrievalErr(b.Name(), query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, retrievalErr(b.Name(), query, fmt.Errorf("unexpected status: %v", resp.Status))
	}

	var payload struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, retrievalErr(b.Name(), query, fmt.Errorf("failed to decode response: %w", err))
	}

	results := make([]Result, 0, min(limit, len(payload.Web.Results)))
	for _, r := range payload.Web.Results {
		if len(results) >= limit {
			break
		}
		results = append(results, Result{Title: plainText(r.Title), URL: r.URL, Snippet: plainText(r.Description)})
	}
	return results, nil
}

// plainText drops the <strong> highlighting brave adds to descriptions and
// decodes html entities.
func plainText(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	return collapse(textOf(doc))
}
