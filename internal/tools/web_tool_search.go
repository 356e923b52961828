package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baalimago/webagent/internal/search"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const WebSearchName = "web_search"

// WebSearch exposes a search.Provider to the model.
type WebSearch struct {
	provider   search.Provider
	maxResults int
}

// NewWebSearch returns the search tool. maxResults is used whenever the model
// doesn't ask for a specific amount of results.
func NewWebSearch(p search.Provider, maxResults int) *WebSearch {
	if maxResults <= 0 {
		maxResults = search.DefaultMaxResults
	}
	maxResults = min(maxResults, search.MaxResults)
	return &WebSearch{provider: p, maxResults: maxResults}
}

func (w *WebSearch) Specification() pub_models.Specification {
	return pub_models.Specification{
		Name: WebSearchName,
		Description: "Search the web. Returns a markdown list of results with title, url and a short snippet. " +
			"Use fetch_page to read any of the results.",
		Inputs: &pub_models.InputSchema{
			Type: "object",
			Properties: map[string]pub_models.ParameterObject{
				"query": {
					Type:        "string",
					Description: "The search query.",
				},
				"max_results": {
					Type:        "integer",
					Description: fmt.Sprintf("Maximum amount of results to return, at most %v. Defaults to %v.", search.MaxResults, w.maxResults),
				},
			},
			Required: []string{"query"},
		},
	}
}

func (w *WebSearch) Call(ctx context.Context, input pub_models.Input) (string, error) {
	query, ok := input.String("query")
	if !ok {
		return "", errors.New("query must be a string")
	}
	limit, err := input.Int("max_results", w.maxResults)
	if err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = w.maxResults
	}
	limit = min(limit, search.MaxResults)
	results, err := w.provider.Search(ctx, query, limit)
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}

// FormatResults renders results as a markdown list.
func FormatResults(results []search.Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- [%v](%v)", r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, " - %v", r.Snippet)
		}
	}
	return sb.String()
}
