package collection

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// AllFilter is the filter value meaning "no constraint". Values of the form
// "All <Something>" carry the same meaning.
const AllFilter = "All"

// SearchMode selects how search text is compared with searchable fields.
type SearchMode int

const (
	// SearchSubstring matches a case-insensitive substring.
	SearchSubstring SearchMode = iota
	// SearchFuzzy matches characters in order, case- and accent-insensitively.
	SearchFuzzy
)

// Query is the search, filter and page state of one controller.
type Query struct {
	Search  string
	Filters map[string]string
	Page    int
}

// NewQuery returns the initial query: no search, no filters, first page.
func NewQuery() Query {
	return Query{Filters: map[string]string{}, Page: 1}
}

func (q Query) clone() Query {
	out := Query{Search: q.Search, Page: q.Page, Filters: make(map[string]string, len(q.Filters))}
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// IsAllFilter reports whether v is the no-constraint sentinel.
func IsAllFilter(v string) bool {
	return v == AllFilter || strings.HasPrefix(v, AllFilter+" ")
}

type predicate[T any] struct {
	schema Schema[T]
	query  Query
	mode   SearchMode
	needle string
	fold   cases.Caser
}

func newPredicate[T any](schema Schema[T], q Query, mode SearchMode) *predicate[T] {
	p := &predicate[T]{schema: schema, query: q, mode: mode, fold: cases.Fold()}
	p.needle = p.fold.String(q.Search)
	return p
}

func (p *predicate[T]) searchMatches(rec T) bool {
	if p.query.Search == "" {
		return true
	}
	for _, f := range p.schema.Searchable {
		value := f.Get(rec)
		switch p.mode {
		case SearchFuzzy:
			if fuzzy.MatchNormalizedFold(p.query.Search, value) {
				return true
			}
		default:
			if strings.Contains(p.fold.String(value), p.needle) {
				return true
			}
		}
	}
	return false
}

func (p *predicate[T]) filtersMatch(rec T) bool {
	for name, want := range p.query.Filters {
		if IsAllFilter(want) {
			continue
		}
		field, ok := p.schema.filterField(name)
		if !ok || field.Get(rec) != want {
			return false
		}
	}
	return true
}

func (p *predicate[T]) matches(rec T) bool {
	return p.searchMatches(rec) && p.filtersMatch(rec)
}

// Matches reports whether rec satisfies both the search text and every active
// filter of q.
func Matches[T any](rec T, q Query, schema Schema[T], mode SearchMode) bool {
	return newPredicate(schema, q, mode).matches(rec)
}

// Filter returns the records matching q in their original order. The result
// is never nil.
func Filter[T any](records []T, q Query, schema Schema[T], mode SearchMode) []T {
	p := newPredicate(schema, q, mode)
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if p.matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}
