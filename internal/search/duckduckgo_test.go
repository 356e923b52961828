package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

const liteFixture = `<html><body><table>
<tr class="result-sponsored"><td><a class="result-link" href="https://duckduckgo.com/y.js?ad=1">Buy tickets</a></td></tr>
<tr class="result-sponsored"><td class="result-snippet">Sponsored snippet</td></tr>
<tr><td>1.</td><td><a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fen.wikipedia.org%2Fwiki%2F2023_FIFA_Women%27s_World_Cup&amp;rut=abc" class="result-link">2023 FIFA Women's World Cup - Wikipedia</a></td></tr>
<tr><td>&nbsp;</td><td class="result-snippet">Spain won  the <b>final</b> against England.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" href="https://www.fifa.com/womensworldcup" class="result-link">FIFA Women's World Cup</a></td></tr>
<tr><td>&nbsp;</td><td class="result-snippet">Official site.</td></tr>
<tr><td>3.</td><td><a rel="nofollow" href="https://example.com/third" class="result-link">Third</a></td></tr>
<tr><td>&nbsp;</td><td class="result-snippet">Third snippet.</td></tr>
</table></body></html>`

func newTestDDG(t *testing.T, h http.HandlerFunc) *DuckDuckGo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	d := NewDuckDuckGo(srv.Client())
	d.Endpoint = srv.URL
	d.limiter = nil
	return d
}

func TestParseLite(t *testing.T) {
	got, err := parseLite(strings.NewReader(liteFixture), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got: %v", len(got))
	}
	testboil.FailTestIfDiff(t, got[0], Result{
		Title:   "2023 FIFA Women's World Cup - Wikipedia",
		URL:     "https://en.wikipedia.org/wiki/2023_FIFA_Women's_World_Cup",
		Snippet: "Spain won the final against England.",
	})
	testboil.FailTestIfDiff(t, got[1].URL, "https://www.fifa.com/womensworldcup")
	testboil.FailTestIfDiff(t, got[2].Snippet, "Third snippet.")
}

func TestParseLite_Limit(t *testing.T) {
	got, err := parseLite(strings.NewReader(liteFixture), 2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, len(got), 2)
	testboil.FailTestIfDiff(t, got[1].Snippet, "Official site.")
}

func TestUnwrapRedirect(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa", want: "https://example.com/a"},
		{in: "https://example.com/b", want: "https://example.com/b"},
		{in: "javascript:alert(1)", want: ""},
		{in: "/relative", want: ""},
	} {
		testboil.FailTestIfDiff(t, unwrapRedirect(tc.in), tc.want)
	}
}

func TestDuckDuckGo_Search(t *testing.T) {
	var gotQuery string
	d := newTestDDG(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got: %v", r.Method)
		}
		r.ParseForm()
		gotQuery = r.PostForm.Get("q")
		w.Write([]byte(liteFixture))
	})
	got, err := d.Search(context.Background(), "2023 FIFA 女子ワールドカップの優勝国は？", 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, gotQuery, "2023 FIFA 女子ワールドカップの優勝国は？")
	testboil.FailTestIfDiff(t, len(got), 3)
}

func TestDuckDuckGo_EmptyQuery(t *testing.T) {
	var hits atomic.Int32
	d := newTestDDG(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	_, err := d.Search(context.Background(), "   ", 5)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got: %v", err)
	}
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RetrievalError, got: %T", err)
	}
	testboil.FailTestIfDiff(t, hits.Load(), int32(0))
}

func TestDuckDuckGo_BadStatus(t *testing.T) {
	d := newTestDDG(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := d.Search(context.Background(), "q", 5)
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RetrievalError, got: %v", err)
	}
	testboil.FailTestIfDiff(t, re.Provider, "duckduckgo")
	testboil.AssertStringContains(t, err.Error(), "500")
}

func TestDuckDuckGo_RetriesOn429(t *testing.T) {
	var hits atomic.Int32
	d := newTestDDG(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(liteFixture))
	})
	got, err := d.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, hits.Load(), int32(2))
	testboil.FailTestIfDiff(t, len(got), 1)
}

func TestDuckDuckGo_429RespectsContext(t *testing.T) {
	d := newTestDDG(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	testboil.ReturnsOnContextCancel(t, func(ctx context.Context) {
		d.Search(ctx, "q", 1)
	}, time.Second)
}
