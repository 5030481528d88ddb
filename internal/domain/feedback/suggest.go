package feedback

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/nortenlab/invoicedraft/internal/domain/parse"
)

// Suggestion is one ranked feedback candidate for an unmatched line.
type Suggestion struct {
	Entry *Entry
	Score float64
}

// Suggester offers full-text candidate lookup over a feedback snapshot for
// review tooling: when no matcher strategy fires, reviewers still get the
// closest prior corrections to pick from. It never rewrites lines itself.
type Suggester struct {
	index   bleve.Index
	entries map[string]*Entry
}

type suggestDoc struct {
	Description string `json:"description"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
}

// NewSuggester builds an in-memory search index over the snapshot.
func NewSuggester(entries []Entry) (*Suggester, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create suggest index: %w", err)
	}
	s := &Suggester{index: index, entries: make(map[string]*Entry, len(entries))}
	for i := range entries {
		e := &entries[i]
		id := e.ID.String()
		doc := suggestDoc{
			Description: parse.NormalizeDescription(e.DetectedDescription),
			SKU:         parse.NormalizeSKU(e.DetectedSKU),
			ProductName: e.AssignedProductName,
		}
		if err := index.Index(id, doc); err != nil {
			return nil, fmt.Errorf("index feedback entry %s: %w", id, err)
		}
		s.entries[id] = e
	}
	return s, nil
}

// Suggest returns up to limit feedback entries ranked by relevance to the
// description. Typo-tolerant: the query runs with fuzziness enabled.
func (s *Suggester) Suggest(description string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 5
	}
	query := bleve.NewMatchQuery(parse.NormalizeDescription(description))
	query.SetFuzziness(1)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search feedback index: %w", err)
	}

	out := make([]Suggestion, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if e, ok := s.entries[hit.ID]; ok {
			out = append(out, Suggestion{Entry: e, Score: hit.Score})
		}
	}
	return out, nil
}

// Close releases the in-memory index.
func (s *Suggester) Close() error {
	return s.index.Close()
}
