package results

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Synthetic TagMap keys that do not correspond to HTML elements.
const (
	KeyDescription  = "description"
	KeyImage        = "image"
	KeyRedirectLink = "redirect link"
)

// TagMap groups extracted strings by tag name. Enumeration order is the order
// in which tags were first inserted.
type TagMap struct {
	m *orderedmap.OrderedMap[string, []string]
}

// NewTagMap returns an empty TagMap.
func NewTagMap() *TagMap {
	return &TagMap{m: orderedmap.New[string, []string]()}
}

// Len returns the number of tags.
func (t *TagMap) Len() int { return t.m.Len() }

// Get returns the values stored under tag.
func (t *TagMap) Get(tag string) ([]string, bool) { return t.m.Get(tag) }

// Has reports whether tag is present.
func (t *TagMap) Has(tag string) bool {
	_, ok := t.m.Get(tag)
	return ok
}

// Set stores values under tag. An existing tag keeps its position.
func (t *TagMap) Set(tag string, values []string) { t.m.Set(tag, values) }

// Delete removes tag.
func (t *TagMap) Delete(tag string) { t.m.Delete(tag) }

// Prepend inserts value at the front of the sequence stored under tag,
// creating the tag at the end of the enumeration order when absent.
func (t *TagMap) Prepend(tag, value string) {
	cur, _ := t.m.Get(tag)
	next := make([]string, 0, len(cur)+1)
	next = append(next, value)
	next = append(next, cur...)
	t.m.Set(tag, next)
}

// Tags returns tag names in enumeration order.
func (t *TagMap) Tags() []string {
	out := make([]string, 0, t.m.Len())
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Range calls fn for every tag in enumeration order. Returning false stops
// the iteration.
func (t *TagMap) Range(fn func(tag string, values []string) bool) {
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// MarshalJSON writes the tags as a JSON object in enumeration order.
func (t *TagMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for p := t.m.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeJSON(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		values := p.Value
		if values == nil {
			values = []string{}
		}
		if err := writeJSON(&buf, values); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResultMap maps a fetched URL to the TagMap extracted from it. It is owned by
// a single run and is not safe for concurrent use.
type ResultMap struct {
	m *orderedmap.OrderedMap[string, *TagMap]
}

// New returns an empty ResultMap.
func New() *ResultMap {
	return &ResultMap{m: orderedmap.New[string, *TagMap]()}
}

// Len returns the number of URL entries.
func (r *ResultMap) Len() int { return r.m.Len() }

// Get returns the TagMap stored for url.
func (r *ResultMap) Get(url string) (*TagMap, bool) { return r.m.Get(url) }

// Has reports whether url has an entry.
func (r *ResultMap) Has(url string) bool {
	_, ok := r.m.Get(url)
	return ok
}

// Set stores tags for url, overwriting any earlier entry.
func (r *ResultMap) Set(url string, tags *TagMap) { r.m.Set(url, tags) }

// Delete removes the entry for url.
func (r *ResultMap) Delete(url string) { r.m.Delete(url) }

// Keys returns URLs in insertion order.
func (r *ResultMap) Keys() []string {
	out := make([]string, 0, r.m.Len())
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Range calls fn for every entry in insertion order. Returning false stops
// the iteration.
func (r *ResultMap) Range(fn func(url string, tags *TagMap) bool) {
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (r *ResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeJSON(&buf, p.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		tags := p.Value
		if tags == nil {
			tags = NewTagMap()
		}
		b, err := tags.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSON encodes v without HTML escaping so extracted text stays readable.
func writeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
