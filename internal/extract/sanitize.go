package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RemovedTags lists the elements dropped before extraction. Each match is
// removed together with its whole subtree.
var RemovedTags = []string{
	"nav", "footer", "style", "span", "script", "a", "button", "code",
	"label", "sup", "b", "li", "br", "cite", "em", "strong",
}

var removedSelector = strings.Join(RemovedTags, ", ")

// Sanitize removes every denylisted element from doc in place and returns the
// same document. Removed subtrees cannot be recovered.
func Sanitize(doc *goquery.Document) *goquery.Document {
	doc.Find(removedSelector).Remove()
	return doc
}
