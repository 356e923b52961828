package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const DuckDuckGoURL = "https://lite.duckduckgo.com/lite/"

const ddgUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

// DuckDuckGo scrapes the lite html interface of DuckDuckGo.
type DuckDuckGo struct {
	Endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewDuckDuckGo creates a DuckDuckGo searcher. All instances share a 1 QPS
// limit, DuckDuckGo starts answering 202/429 quickly otherwise.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		Endpoint: DuckDuckGoURL,
		client:   client,
		limiter:  limiterFor("duckduckgo", rate.Limit(1), 1),
	}
}

func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := validateQuery(d.Name(), query); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	form := url.Values{}
	form.Set("q", query)
	body := form.Encode()
	resp, err := doPaced(ctx, d.client, d.limiter, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", ddgUserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, retrievalErr(d.Name(), query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, retrievalErr(d.Name(), query, fmt.Errorf("unexpected status: %v", resp.Status))
	}

	results, err := parseLite(io.LimitReader(resp.Body, 2<<20), limit)
	if err != nil {
		return nil, retrievalErr(d.Name(), query, err)
	}
	return results, nil
}

// parseLite extracts results from the lite page. Each result is an anchor
// with class 'result-link', followed by a cell with class 'result-snippet'.
// Sponsored rows are skipped.
func parseLite(r io.Reader, limit int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	results := make([]Result, 0, limit)
	// Set when the latest result-link was kept, so that its snippet may be attached
	pending := -1
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "tr" && hasClass(n, "result-sponsored"):
				pending = -1
				return true
			case n.Data == "a" && hasClass(n, "result-link"):
				pending = -1
				link := unwrapRedirect(attr(n, "href"))
				title := collapse(textOf(n))
				if link == "" || title == "" || isAd(link) {
					return true
				}
				if len(results) >= limit {
					return false
				}
				results = append(results, Result{Title: title, URL: link})
				pending = len(results) - 1
				return true
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if pending >= 0 {
					results[pending].Snippet = collapse(textOf(n))
					pending = -1
				}
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return results, nil
}

// unwrapRedirect turns DuckDuckGo redirect links into the target url.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func isAd(link string) bool {
	return strings.Contains(link, "duckduckgo.com/y.js")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
