package service

import (
	"context"

	"github.com/nordsearch/pagefinder/internal/search/domain"
	"github.com/nordsearch/pagefinder/internal/search/store"
)

// DefaultLanguage is the language tag applied when a caller omits one.
const DefaultLanguage = "en"

// SearchService executes language-scoped substring searches over the page
// collection.
type SearchService struct {
	Store store.Store
}

// Search returns pages in the given language whose content contains query
// as a literal substring, in insertion order. An empty query returns an
// empty result without touching the store; no query text means no search
// executes.
func (s *SearchService) Search(ctx context.Context, query, language string) ([]domain.Page, error) {
	if query == "" {
		return []domain.Page{}, nil
	}
	if language == "" {
		language = DefaultLanguage
	}
	return s.Store.Pages().SearchPages(ctx, language, query)
}
