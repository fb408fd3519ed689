package extract

import "github.com/hyperifyio/tagscrape/internal/results"

// Extractor turns a fetched page into a TagMap.
// Implementations should be deterministic and avoid side effects.
type Extractor interface {
	Extract(body []byte, contentType string) (*results.TagMap, error)
}

// TagExtractor parses, sanitizes and groups text by tag.
type TagExtractor struct{}

func (TagExtractor) Extract(body []byte, contentType string) (*results.TagMap, error) {
	doc, err := Parse(body, contentType)
	if err != nil {
		return nil, err
	}
	return Tags(Sanitize(doc)), nil
}
