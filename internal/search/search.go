package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxResults is used whenever a caller asks for zero or fewer results.
const DefaultMaxResults = 10

// MaxResults is the most results a single search may ask for.
const MaxResults = 20

const maxBackoff = 30 * time.Second

var (
	ErrEmptyQuery      = errors.New("query is empty")
	ErrMissingKey      = errors.New("search provider api key is missing")
	ErrUnknownProvider = errors.New("unknown search provider")
)

// Result is a single item returned by a Provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider executes a query and returns at most limit results.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// RetrievalError is returned whenever a search provider fails to produce
// results, be it due to transport, status or parsing.
type RetrievalError struct {
	Provider string
	Query    string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%v search for '%v' failed: %v", e.Provider, e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

func retrievalErr(provider, query string, err error) error {
	return &RetrievalError{Provider: provider, Query: query, Err: err}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultMaxResults
	}
	return limit
}

func validateQuery(provider, query string) error {
	if strings.TrimSpace(query) == "" {
		return retrievalErr(provider, query, ErrEmptyQuery)
	}
	return nil
}

var (
	limitersMu sync.Mutex
	limiters   = map[string]*rate.Limiter{}
)

// limiterFor returns the shared limiter for key, creating it on first use.
// Instances talking to the same upstream with the same credentials share
// one limiter so that the upstream rate limit holds process wide.
func limiterFor(key string, r rate.Limit, burst int) *rate.Limiter {
	limitersMu.Lock()
	defer limitersMu.Unlock()
	l, ok := limiters[key]
	if !ok {
		l = rate.NewLimiter(r, burst)
		limiters[key] = l
	}
	return l
}

// doPaced issues the request built by newReq once the limiter allows it and
// retries on 429, doubling the delay each time up to maxBackoff.
func doPaced(ctx context.Context, client *http.Client, limiter *rate.Limiter, newReq func() (*http.Request, error)) (*http.Response, error) {
	delay := time.Second
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		req, err := newReq()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
}

// New returns the provider with the given name. 'auto' picks Brave if
// BRAVE_API_KEY is set, then Tavily if TAVILY_API_KEY is set, and falls
// back to DuckDuckGo.
func New(name string, client *http.Client) (Provider, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "duckduckgo", "ddg":
		return NewDuckDuckGo(client), nil
	case "brave":
		key := os.Getenv("BRAVE_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: brave requires BRAVE_API_KEY", ErrMissingKey)
		}
		return NewBrave(key, client), nil
	case "tavily":
		key := os.Getenv("TAVILY_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: tavily requires TAVILY_API_KEY", ErrMissingKey)
		}
		return NewTavily(key, "basic", client), nil
	case "auto":
		if key := os.Getenv("BRAVE_API_KEY"); key != "" {
			return NewBrave(key, client), nil
		}
		if key := os.Getenv("TAVILY_API_KEY"); key != "" {
			return NewTavily(key, "basic", client), nil
		}
		return NewDuckDuckGo(client), nil
	}
	return nil, fmt.Errorf("%w: '%v', expected one of: duckduckgo, brave, tavily, auto", ErrUnknownProvider, name)
}
