package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/tagscrape/internal/results"
)

// Parse decodes body to UTF-8 using the Content-Type hint and any in-document
// charset declaration, then parses it into a document tree. Scripting is
// disabled so <noscript> content is parsed as markup rather than raw text.
func Parse(body []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	if dec, err := charset.NewReader(r, contentType); err == nil {
		r = dec
	} else {
		r = bytes.NewReader(body)
	}
	root, err := html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Tags walks a sanitized document and groups the trimmed string content of
// every element by tag name. Equal strings under one tag are kept once, in
// document order. Page description and og:image are appended under the
// synthetic keys when present. Tags with no strings are never included.
func Tags(doc *goquery.Document) *results.TagMap {
	tm := results.NewTagMap()
	seen := make(map[string]map[string]struct{})
	for _, root := range doc.Nodes {
		walkElements(root, func(n *html.Node) {
			s, ok := stringContent(n)
			if !ok {
				return
			}
			s = strings.TrimSpace(s)
			if s == "" {
				return
			}
			tag := n.Data
			set, exists := seen[tag]
			if !exists {
				set = make(map[string]struct{})
				seen[tag] = set
			}
			if _, dup := set[s]; dup {
				return
			}
			set[s] = struct{}{}
			cur, _ := tm.Get(tag)
			tm.Set(tag, append(cur, s))
		})
	}

	description, image := metaTags(doc)
	if description != "" {
		tm.Set(results.KeyDescription, []string{description})
	}
	if image != "" {
		tm.Set(results.KeyImage, []string{image})
	}
	return tm
}

// metaTags returns the content of the first description and og:image meta
// elements. Missing elements or attributes yield empty strings.
func metaTags(doc *goquery.Document) (description, image string) {
	description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	image, _ = doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return description, image
}

// stringContent returns the single string an element stands for: the text of
// a lone text child, or the string content of a lone element child. Elements
// with zero or several children have none.
func stringContent(n *html.Node) (string, bool) {
	c := n.FirstChild
	if c == nil || c.NextSibling != nil {
		return "", false
	}
	switch c.Type {
	case html.TextNode:
		return c.Data, true
	case html.ElementNode:
		return stringContent(c)
	}
	return "", false
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}
