// Package query implements C9, Element Query: combines semantic
// similarity with structural filters to answer element.search queries
// against the Semantic Index.
package query

import (
	"context"

	"github.com/polzovatel/screenintel/internal/semindex"
)

const (
	defaultK        = 3
	defaultMinScore = 0.5
	relaxStep       = 0.1
)

// Filters mirrors semindex.SearchFilters at the query surface.
type Filters = semindex.SearchFilters

// Searcher is the subset of *semindex.Index this package depends on.
type Searcher interface {
	Search(ctx context.Context, query string, k int, minScore float64, filters semindex.SearchFilters) ([]semindex.SearchResult, error)
}

// Search delegates to the index, passing filters (clickableOnly included)
// through for the index to apply, and relaxes minScore by one step
// exactly once if the result set is empty.
func Search(ctx context.Context, idx Searcher, q string, k int, minScore float64, filters Filters) ([]semindex.SearchResult, error) {
	if k <= 0 {
		k = defaultK
	}
	if minScore == 0 {
		minScore = defaultMinScore
	}

	results, err := idx.Search(ctx, q, k, minScore, filters)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		results, err = idx.Search(ctx, q, k, minScore-relaxStep, filters)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
