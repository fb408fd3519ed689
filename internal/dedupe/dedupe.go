// Package dedupe removes repeated text from a ResultMap in three passes:
// within a tag, across the tags of one URL, and finally empty entries.
package dedupe

import "github.com/hyperifyio/tagscrape/internal/results"

// ShouldRun reports whether the pipeline should run over r. It returns false
// only when the top level has exactly the two keys "title" and "description",
// which is the shape of a single page's TagMap rather than a URL-keyed map.
func ShouldRun(r *results.ResultMap) bool {
	if r.Len() != 2 {
		return true
	}
	return !(r.Has("title") && r.Has(results.KeyDescription))
}

// Run applies IntraTag, CrossTag and Prune in that order when ShouldRun
// allows it. It reports whether the passes ran.
func Run(r *results.ResultMap) bool {
	if !ShouldRun(r) {
		return false
	}
	IntraTag(r)
	CrossTag(r)
	Prune(r)
	return true
}

// IntraTag rewrites every tag so that each string appears once. Repeats are
// collapsed keeping the first occurrence, empty strings are dropped, and the
// surviving values are stored back to front, so the output order is the
// reverse of the input order.
func IntraTag(r *results.ResultMap) {
	r.Range(func(_ string, tm *results.TagMap) bool {
		for _, tag := range tm.Tags() {
			values, _ := tm.Get(tag)
			tm.Set(tag, reverseDistinct(unique(values)))
		}
		return true
	})
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// reverseDistinct scans values from the end and keeps a value when it is
// non-empty and differs from the last kept one.
func reverseDistinct(values []string) []string {
	out := make([]string, 0, len(values))
	last := ""
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		if v == "" || (len(out) > 0 && v == last) {
			continue
		}
		out = append(out, v)
		last = v
	}
	return out
}

// CrossTag removes strings that appear under more than one tag of the same
// URL. Tags are visited in enumeration order and a string survives under the
// first tag that holds it.
func CrossTag(r *results.ResultMap) {
	r.Range(func(_ string, tm *results.TagMap) bool {
		claimed := make(map[string]struct{})
		for _, tag := range tm.Tags() {
			values, _ := tm.Get(tag)
			kept := make([]string, 0, len(values))
			for _, v := range values {
				if _, ok := claimed[v]; ok {
					continue
				}
				kept = append(kept, v)
			}
			for _, v := range kept {
				claimed[v] = struct{}{}
			}
			tm.Set(tag, kept)
		}
		return true
	})
}

// Prune deletes tags with no values, then URLs with no tags.
func Prune(r *results.ResultMap) {
	for _, url := range r.Keys() {
		tm, _ := r.Get(url)
		if tm == nil {
			r.Delete(url)
			continue
		}
		for _, tag := range tm.Tags() {
			if values, _ := tm.Get(tag); len(values) == 0 {
				tm.Delete(tag)
			}
		}
		if tm.Len() == 0 {
			r.Delete(url)
		}
	}
}
