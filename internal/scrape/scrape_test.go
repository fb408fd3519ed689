package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/tagscrape/internal/extract"
	"github.com/hyperifyio/tagscrape/internal/fetch"
	"github.com/hyperifyio/tagscrape/internal/results"
)

// captureLog swaps the global logger for one writing into a buffer.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><meta name="description" content="hello"></head><body><p>Welcome</p><p>Welcome</p></body></html>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/c", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Page C</h1></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newScraper() *Scraper {
	return &Scraper{
		Fetcher:   &fetch.Client{PerRequestTimeout: 2 * time.Second},
		Extractor: extract.TagExtractor{},
	}
}

func tagValues(t *testing.T, r *results.ResultMap, url, tag string) []string {
	t.Helper()
	tm, ok := r.Get(url)
	if !ok {
		t.Fatalf("missing entry for %s; have %v", url, r.Keys())
	}
	v, _ := tm.Get(tag)
	return v
}

func TestParsePage_StoresExtractedTags(t *testing.T) {
	captureLog(t)
	srv := newServer(t)
	r := results.New()

	st := newScraper().ParsePage(context.Background(), srv.URL+"/a", r)
	if st.Fetched != 1 || st.Failed != 0 {
		t.Fatalf("stats = %+v", st)
	}
	tm, _ := r.Get(srv.URL + "/a")
	if !reflect.DeepEqual(tm.Tags(), []string{"p", results.KeyDescription}) {
		t.Fatalf("tags = %v", tm.Tags())
	}
	if got := tagValues(t, r, srv.URL+"/a", "p"); !reflect.DeepEqual(got, []string{"Welcome"}) {
		t.Fatalf("p = %v", got)
	}
}

func TestParsePage_FollowsRedirectIntoSeparateEntry(t *testing.T) {
	logs := captureLog(t)
	srv := newServer(t)
	r := results.New()

	st := newScraper().ParsePage(context.Background(), srv.URL+"/b", r)
	if st.Fetched != 2 || st.Redirects != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if !reflect.DeepEqual(r.Keys(), []string{srv.URL + "/b", srv.URL + "/c"}) {
		t.Fatalf("keys = %v", r.Keys())
	}
	if got := tagValues(t, r, srv.URL+"/b", results.KeyRedirectLink); !reflect.DeepEqual(got, []string{srv.URL + "/c"}) {
		t.Fatalf("redirect link = %v", got)
	}
	if got := tagValues(t, r, srv.URL+"/c", "h1"); !reflect.DeepEqual(got, []string{"Page C"}) {
		t.Fatalf("c/h1 = %v", got)
	}
	tmC, _ := r.Get(srv.URL + "/c")
	if tmC.Has(results.KeyRedirectLink) {
		t.Fatalf("final page must not carry a redirect link")
	}
	if !strings.Contains(logs.String(), `"hops":1`) || !strings.Contains(logs.String(), `"target":"`+srv.URL+`/c"`) {
		t.Fatalf("expected redirect note in log, got %s", logs.String())
	}
}

func TestParsePage_NotFoundLeavesNoEntry(t *testing.T) {
	logs := captureLog(t)
	srv := newServer(t)
	r := results.New()

	st := newScraper().ParsePage(context.Background(), srv.URL+"/missing", r)
	if st.Failed != 1 || r.Len() != 0 {
		t.Fatalf("stats = %+v, keys = %v", st, r.Keys())
	}
	out := logs.String()
	if !strings.Contains(out, srv.URL+"/missing") || !strings.Contains(out, `"status":404`) {
		t.Fatalf("expected failure with url and status in log, got %s", out)
	}
}

func TestParsePage_OverwritesEarlierEntry(t *testing.T) {
	captureLog(t)
	srv := newServer(t)
	r := results.New()
	stale := results.NewTagMap()
	stale.Set("p", []string{"stale"})
	r.Set(srv.URL+"/c", stale)

	newScraper().ParsePage(context.Background(), srv.URL+"/c", r)
	tm, _ := r.Get(srv.URL + "/c")
	if tm.Has("p") {
		t.Fatalf("stale entry not overwritten: %v", tm.Tags())
	}
}

func TestParseAll_IsolatesFailures(t *testing.T) {
	captureLog(t)
	srv := newServer(t)
	r := results.New()
	seeds := []string{"", srv.URL + "/missing", "http://127.0.0.1:1/unreachable", srv.URL + "/a", srv.URL + "/a"}

	st, err := newScraper().ParseAll(context.Background(), seeds, r)
	if err != nil {
		t.Fatalf("parse all: %v", err)
	}
	if st.Seeds != 5 || st.Failed != 3 || st.Fetched != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if !reflect.DeepEqual(r.Keys(), []string{srv.URL + "/a"}) {
		t.Fatalf("keys = %v", r.Keys())
	}
}

func TestParseAll_StopsOnCancel(t *testing.T) {
	captureLog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := newScraper().ParseAll(ctx, []string{"http://a.test"}, results.New())
	if err == nil || st.Seeds != 0 {
		t.Fatalf("expected cancellation before first seed, got %+v %v", st, err)
	}
}

// scriptedGetter answers every URL with a fixed redirect target.
type scriptedGetter struct {
	next  map[string]string
	calls []string
}

func (g *scriptedGetter) Get(_ context.Context, url string) (*fetch.Response, error) {
	g.calls = append(g.calls, url)
	resp := &fetch.Response{URL: url, FinalURL: url, StatusCode: 200, ContentType: "text/html",
		Body: []byte("<html><body><h1>" + url + "</h1></body></html>")}
	if target, ok := g.next[url]; ok {
		resp.FinalURL = target
		resp.Redirects = 1
	}
	return resp, nil
}

func TestParsePage_RedirectLoopGuard(t *testing.T) {
	logs := captureLog(t)
	g := &scriptedGetter{next: map[string]string{"http://x.test": "http://y.test", "http://y.test": "http://x.test"}}
	r := results.New()

	(&Scraper{Fetcher: g}).ParsePage(context.Background(), "http://x.test", r)
	if !reflect.DeepEqual(g.calls, []string{"http://x.test", "http://y.test"}) {
		t.Fatalf("calls = %v", g.calls)
	}
	if got := tagValues(t, r, "http://y.test", results.KeyRedirectLink); !reflect.DeepEqual(got, []string{"http://x.test"}) {
		t.Fatalf("y redirect link = %v", got)
	}
	if !strings.Contains(logs.String(), "redirect loop") {
		t.Fatalf("expected loop warning, got %s", logs.String())
	}
}

func TestParsePage_MaxFollow(t *testing.T) {
	captureLog(t)
	next := map[string]string{}
	for i := 0; i < 10; i++ {
		next[fmt.Sprintf("http://h%d.test", i)] = fmt.Sprintf("http://h%d.test", i+1)
	}
	g := &scriptedGetter{next: next}
	r := results.New()

	(&Scraper{Fetcher: g, MaxFollow: 2}).ParsePage(context.Background(), "http://h0.test", r)
	if r.Len() != 3 {
		t.Fatalf("entries = %v, want seed plus two targets", r.Keys())
	}
}
