// Package fetch retrieves web pages, reduces them to readable text and
// splits the text into stable pages which a model can walk through.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultPageRunes is the page size used when a Fetcher has none configured.
const DefaultPageRunes = 3000

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

// Hard cap on how much of a body is read.
const maxBodyBytes = 5 << 20

var ErrUnsupportedContentType = errors.New("unsupported content-type")

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Page is one window of the text of a document.
type Page struct {
	URL        string `json:"url"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
	HasMore    bool   `json:"has_more"`
	TotalPages int    `json:"total_pages"`
}

type FetchError struct {
	URL  string
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch '%v' (page %v): %v", e.URL, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	// PageRunes is the maximum amount of runes per page.
	PageRunes int
	client    httpDoer
}

type Option func(*Fetcher)

func WithPageRunes(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.PageRunes = n
		}
	}
}

func WithClient(c httpDoer) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		PageRunes: DefaultPageRunes,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch the document at rawURL and return page number page of its text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, page int) (Page, error) {
	fail := func(err error) (Page, error) {
		return Page{}, &FetchError{URL: rawURL, Page: page, Err: err}
	}
	if page < 0 {
		return fail(fmt.Errorf("page must be >= 0, got: %v", page))
	}
	u, err := parseURL(rawURL)
	if err != nil {
		return fail(err)
	}
	text, err := f.text(ctx, u)
	if err != nil {
		return fail(err)
	}
	pages := paginate(text, f.pageRunes())
	if page >= len(pages) {
		return fail(fmt.Errorf("page %v out of range, document has %v pages", page, len(pages)))
	}
	return Page{
		URL:        u.String(),
		Index:      page,
		Text:       pages[page],
		HasMore:    page < len(pages)-1,
		TotalPages: len(pages),
	}, nil
}

func (f *Fetcher) pageRunes() int {
	if f.PageRunes <= 0 {
		return DefaultPageRunes
	}
	return f.PageRunes
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url: scheme must be http or https, got: '%v'", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("invalid url: missing host")
	}
	return u, nil
}

func (f *Fetcher) text(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept",
		"text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	ctype := resp.Header.Get("Content-Type")
	if !supported(ctype) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, ctype)
	}
	return extractText(resp.Body, ctype)
}

func supported(ctype string) bool {
	if ctype == "" {
		return true
	}
	for _, ok := range []string{"text/html", "application/xhtml+xml", "text/plain"} {
		if strings.Contains(ctype, ok) {
			return true
		}
	}
	return false
}
