package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/webagent/internal/fetch"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
)

func TestFormatPage(t *testing.T) {
	testboil.FailTestIfDiff(t,
		FormatPage(fetch.Page{Text: "hello\n", Index: 0, TotalPages: 2, HasMore: true}),
		"hello\n\n[page 0 of 2, has_more=true]\ncall fetch_page with page=1 for more")
	testboil.FailTestIfDiff(t,
		FormatPage(fetch.Page{Text: "bye\n", Index: 1, TotalPages: 2}),
		"bye\n\n[page 1 of 2, has_more=false]")
	testboil.FailTestIfDiff(t,
		FormatPage(fetch.Page{TotalPages: 1}),
		"[page 0 of 1, has_more=false]")
}

func TestFetchPage_Call(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>" + strings.Repeat("<p>0123456789</p>", 6) + "</body></html>"))
	}))
	t.Cleanup(srv.Close)

	fp := NewFetchPage(fetch.New(fetch.WithPageRunes(33)))
	got, err := fp.Call(context.Background(), pub_models.Input{"url": srv.URL})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.AssertStringContains(t, got, "[page 0 of 2, has_more=true]")
	testboil.AssertStringContains(t, got, "call fetch_page with page=1 for more")

	got, err = fp.Call(context.Background(), pub_models.Input{"url": srv.URL, "page": float64(1)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.AssertStringContains(t, got, "[page 1 of 2, has_more=false]")
}

func TestFetchPage_ErrorsBecomeToolText(t *testing.T) {
	r := NewRegistry(NewFetchPage(fetch.New()))
	for _, in := range []pub_models.Input{
		{},
		{"url": "not a url"},
		{"url": "https://example.com", "page": "x"},
	} {
		got := r.Invoke(context.Background(), pub_models.Call{Name: FetchPageName, Inputs: in})
		testboil.AssertStringContains(t, got, "ERROR: failed to run tool: fetch_page")
	}
}
