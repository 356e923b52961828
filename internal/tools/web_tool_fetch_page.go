package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baalimago/webagent/internal/fetch"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

const FetchPageName = "fetch_page"

type pageFetcher interface {
	Fetch(ctx context.Context, url string, page int) (fetch.Page, error)
}

// FetchPage exposes a fetch.Fetcher to the model.
type FetchPage struct {
	fetcher pageFetcher
}

func NewFetchPage(f pageFetcher) *FetchPage {
	return &FetchPage{fetcher: f}
}

func (f *FetchPage) Specification() pub_models.Specification {
	return pub_models.Specification{
		Name: FetchPageName,
		Description: "Fetch the readable text of a web page. Long pages are split into pages, " +
			"starting at page 0. The output ends with the page position and if more pages exist.",
		Inputs: &pub_models.InputSchema{
			Type: "object",
			Properties: map[string]pub_models.ParameterObject{
				"url": {
					Type:        "string",
					Description: "The http or https URL of the page to read.",
				},
				"page": {
					Type:        "integer",
					Description: "Zero based page of the text to return. Defaults to 0.",
				},
			},
			Required: []string{"url"},
		},
	}
}

func (f *FetchPage) Call(ctx context.Context, input pub_models.Input) (string, error) {
	u, ok := input.String("url")
	if !ok {
		return "", errors.New("url must be a string")
	}
	page, err := input.Int("page", 0)
	if err != nil {
		return "", err
	}
	p, err := f.fetcher.Fetch(ctx, u, page)
	if err != nil {
		return "", err
	}
	return FormatPage(p), nil
}

// FormatPage renders the page text followed by its position footer.
func FormatPage(p fetch.Page) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(p.Text, "\n"))
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "[page %v of %v, has_more=%v]", p.Index, p.TotalPages, p.HasMore)
	if p.HasMore {
		fmt.Fprintf(&sb, "\ncall %v with page=%v for more", FetchPageName, p.Index+1)
	}
	return sb.String()
}
