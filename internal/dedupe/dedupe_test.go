package dedupe

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/hyperifyio/tagscrape/internal/results"
)

// page builds a TagMap from tag/values pairs, keeping the given order.
func page(pairs ...any) *results.TagMap {
	tm := results.NewTagMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		tm.Set(pairs[i].(string), pairs[i+1].([]string))
	}
	return tm
}

func values(t *testing.T, r *results.ResultMap, url, tag string) []string {
	t.Helper()
	tm, ok := r.Get(url)
	if !ok {
		t.Fatalf("missing url %q", url)
	}
	v, _ := tm.Get(tag)
	return v
}

func TestShouldRun(t *testing.T) {
	normal := results.New()
	normal.Set("http://a.test", page("p", []string{"x"}))
	if !ShouldRun(normal) {
		t.Fatalf("URL-keyed map must run the pipeline")
	}
	if !ShouldRun(results.New()) {
		t.Fatalf("empty map must run the pipeline")
	}

	// The guard only fires for a map shaped like a single page's TagMap,
	// which the orchestrator never produces. Kept as-is on purpose.
	odd := results.New()
	odd.Set("title", results.NewTagMap())
	odd.Set(results.KeyDescription, results.NewTagMap())
	if ShouldRun(odd) {
		t.Fatalf("title+description top level must skip the pipeline")
	}

	three := results.New()
	three.Set("title", results.NewTagMap())
	three.Set(results.KeyDescription, results.NewTagMap())
	three.Set("http://a.test", results.NewTagMap())
	if !ShouldRun(three) {
		t.Fatalf("three keys must run the pipeline")
	}

	other := results.New()
	other.Set("title", results.NewTagMap())
	other.Set("image", results.NewTagMap())
	if !ShouldRun(other) {
		t.Fatalf("two keys other than title+description must run the pipeline")
	}
}

func TestRun_SkippedByGateLeavesMapUntouched(t *testing.T) {
	r := results.New()
	r.Set("title", page("p", []string{"a", "a"}))
	r.Set(results.KeyDescription, results.NewTagMap())
	if Run(r) {
		t.Fatalf("expected gate to skip")
	}
	if r.Len() != 2 || !reflect.DeepEqual(values(t, r, "title", "p"), []string{"a", "a"}) {
		t.Fatalf("map changed although the pipeline was skipped")
	}
}

func TestIntraTag_CollapsesAndReverses(t *testing.T) {
	r := results.New()
	r.Set("u", page("p", []string{"a", "b", "b", "", "c", "a"}))
	IntraTag(r)
	if got := values(t, r, "u", "p"); !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("p = %v, want [c b a]", got)
	}
}

func TestIntraTag_FixedPointUnderReversal(t *testing.T) {
	r := results.New()
	r.Set("u", page("h1", []string{"x", "y", "x", "z"}, "p", []string{"1", "1", "2"}))
	IntraTag(r)
	once := map[string][]string{
		"h1": append([]string(nil), values(t, r, "u", "h1")...),
		"p":  append([]string(nil), values(t, r, "u", "p")...),
	}

	// A second application only reverses; nothing more collapses.
	IntraTag(r)
	for tag, v := range once {
		got := values(t, r, "u", tag)
		if len(got) != len(v) {
			t.Fatalf("%s collapsed further: %v vs %v", tag, got, v)
		}
		for i := range v {
			if got[i] != v[len(v)-1-i] {
				t.Fatalf("%s second pass = %v, want reverse of %v", tag, got, v)
			}
		}
	}

	// A third application matches the first.
	IntraTag(r)
	for tag, v := range once {
		if got := values(t, r, "u", tag); !reflect.DeepEqual(got, v) {
			t.Fatalf("%s third pass = %v, want %v", tag, got, v)
		}
	}
}

func TestCrossTag_FirstTagWins(t *testing.T) {
	r := results.New()
	r.Set("http://site.test", page(
		"h2", []string{"Contact Us", "About"},
		"p", []string{"Contact Us", "Body text"},
	))
	CrossTag(r)
	if got := values(t, r, "http://site.test", "h2"); !reflect.DeepEqual(got, []string{"Contact Us", "About"}) {
		t.Fatalf("h2 = %v", got)
	}
	if got := values(t, r, "http://site.test", "p"); !reflect.DeepEqual(got, []string{"Body text"}) {
		t.Fatalf("p = %v", got)
	}
}

func TestCrossTag_ScopedPerURL(t *testing.T) {
	r := results.New()
	r.Set("a", page("p", []string{"shared"}))
	r.Set("b", page("h1", []string{"shared"}))
	CrossTag(r)
	if got := values(t, r, "a", "p"); !reflect.DeepEqual(got, []string{"shared"}) {
		t.Fatalf("a/p = %v", got)
	}
	if got := values(t, r, "b", "h1"); !reflect.DeepEqual(got, []string{"shared"}) {
		t.Fatalf("b/h1 = %v", got)
	}
}

func TestCrossTag_AtMostOneTagPerString(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"alpha", "beta", "gamma", "delta", "eps"}
	tags := []string{"h1", "h2", "p", "div", "title"}
	for round := 0; round < 50; round++ {
		r := results.New()
		for u := 0; u < 3; u++ {
			tm := results.NewTagMap()
			for _, tag := range tags {
				n := rng.Intn(4)
				vals := make([]string, 0, n)
				for i := 0; i < n; i++ {
					vals = append(vals, words[rng.Intn(len(words))])
				}
				tm.Set(tag, vals)
			}
			r.Set(fmt.Sprintf("http://u%d.test", u), tm)
		}
		Run(r)
		r.Range(func(url string, tm *results.TagMap) bool {
			owner := map[string]string{}
			tm.Range(func(tag string, vals []string) bool {
				if len(vals) == 0 {
					t.Fatalf("round %d: %s/%s left empty", round, url, tag)
				}
				for _, v := range vals {
					if prev, ok := owner[v]; ok {
						t.Fatalf("round %d: %q under both %s and %s of %s", round, v, prev, tag, url)
					}
					owner[v] = tag
				}
				return true
			})
			return true
		})
	}
}

func TestPrune_RemovesEmptyTagsAndURLs(t *testing.T) {
	r := results.New()
	r.Set("keep", page("p", []string{"x"}, "h1", []string{}))
	r.Set("drop", page("p", []string{}))
	r.Set("empty", results.NewTagMap())
	Prune(r)
	if !reflect.DeepEqual(r.Keys(), []string{"keep"}) {
		t.Fatalf("keys = %v", r.Keys())
	}
	tm, _ := r.Get("keep")
	if !reflect.DeepEqual(tm.Tags(), []string{"p"}) {
		t.Fatalf("tags = %v", tm.Tags())
	}
}

func TestRun_CrossTagDuplicateDroppedThenPruned(t *testing.T) {
	r := results.New()
	r.Set("u", page("h2", []string{"Contact Us"}, "p", []string{"Contact Us"}))
	if !Run(r) {
		t.Fatalf("expected pipeline to run")
	}
	tm, _ := r.Get("u")
	if !reflect.DeepEqual(tm.Tags(), []string{"h2"}) {
		t.Fatalf("tags = %v, want only h2", tm.Tags())
	}
}
