package collection

import (
	"slices"
	"testing"
)

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	records := []item{{ID: "AST-001", Name: "MacBook"}, {ID: "AST-002", Name: "Monitor"}}
	q := NewQuery()
	q.Search = "mac"
	got := Filter(records, q, itemSchema(), SearchSubstring)
	if !slices.Equal(ids(got), []string{"AST-001"}) {
		t.Fatalf("unexpected view %v", ids(got))
	}
	q.Search = "ast-00"
	if got := Filter(records, q, itemSchema(), SearchSubstring); len(got) != 2 {
		t.Fatalf("search should OR over fields, got %v", ids(got))
	}
}

func TestFilter_UnicodeFolding(t *testing.T) {
	records := []item{{ID: "AST-001", Name: "STRASSE Kiosk"}, {ID: "AST-002", Name: "Ärzte Terminal"}}
	q := NewQuery()
	q.Search = "straße"
	if got := Filter(records, q, itemSchema(), SearchSubstring); !slices.Equal(ids(got), []string{"AST-001"}) {
		t.Fatalf("fold should match sharp s, got %v", ids(got))
	}
	q.Search = "ärzte"
	if got := Filter(records, q, itemSchema(), SearchSubstring); !slices.Equal(ids(got), []string{"AST-002"}) {
		t.Fatalf("fold should match umlaut case, got %v", ids(got))
	}
}

func TestFilter_FuzzyMode(t *testing.T) {
	records := []item{{ID: "AST-001", Name: "MacBook Pro"}, {ID: "AST-002", Name: "Monitor"}}
	q := NewQuery()
	q.Search = "mbp"
	if got := Filter(records, q, itemSchema(), SearchSubstring); len(got) != 0 {
		t.Fatalf("substring mode should not match, got %v", ids(got))
	}
	if got := Filter(records, q, itemSchema(), SearchFuzzy); !slices.Equal(ids(got), []string{"AST-001"}) {
		t.Fatalf("fuzzy mode should match in-order characters, got %v", ids(got))
	}
}

func TestFilter_CategoricalExactMatch(t *testing.T) {
	records := []item{
		{ID: "AST-001", Name: "A", Category: "Laptop", Department: "Engineering"},
		{ID: "AST-002", Name: "B", Category: "laptop", Department: "Engineering"},
		{ID: "AST-003", Name: "C", Category: "Laptop", Department: "Finance"},
	}
	schema := itemSchema()
	cases := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"no filters", map[string]string{}, []string{"AST-001", "AST-002", "AST-003"}},
		{"all sentinel", map[string]string{"category": "All"}, []string{"AST-001", "AST-002", "AST-003"}},
		{"all prefixed sentinel", map[string]string{"category": "All Categories"}, []string{"AST-001", "AST-002", "AST-003"}},
		{"case sensitive", map[string]string{"category": "Laptop"}, []string{"AST-001", "AST-003"}},
		{"conjunction", map[string]string{"category": "Laptop", "department": "Finance"}, []string{"AST-003"}},
		{"undeclared field", map[string]string{"colour": "Red"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuery()
			q.Filters = tc.filters
			got := Filter(records, q, schema, SearchSubstring)
			if got == nil {
				t.Fatalf("Filter returned nil")
			}
			if !slices.Equal(ids(got), tc.want) {
				t.Fatalf("got %v want %v", ids(got), tc.want)
			}
		})
	}
}

func TestFilter_EmptyCollectionIsEmptyNotNil(t *testing.T) {
	got := Filter(nil, NewQuery(), itemSchema(), SearchSubstring)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil view, got %#v", got)
	}
}

func TestFilter_Monotonic(t *testing.T) {
	records := numberedItems(20)
	for i := range records {
		if i%2 == 0 {
			records[i].Category = "Monitor"
		}
		if i%3 == 0 {
			records[i].Department = "Finance"
		}
	}
	schema := itemSchema()
	q := NewQuery()
	base := len(Filter(records, q, schema, SearchSubstring))
	if base > len(records) {
		t.Fatalf("view larger than collection")
	}
	q.Filters["category"] = "Monitor"
	one := len(Filter(records, q, schema, SearchSubstring))
	q.Filters["department"] = "Finance"
	two := len(Filter(records, q, schema, SearchSubstring))
	q.Search = "Laptop 1"
	three := len(Filter(records, q, schema, SearchSubstring))
	if !(three <= two && two <= one && one <= base) {
		t.Fatalf("adding constraints grew the view: %d %d %d %d", base, one, two, three)
	}
}

func TestMatches(t *testing.T) {
	rec := item{ID: "AST-010", Name: "Dock", Category: "Peripheral"}
	q := NewQuery()
	q.Search = "dock"
	q.Filters["category"] = "Peripheral"
	if !Matches(rec, q, itemSchema(), SearchSubstring) {
		t.Fatalf("expected match")
	}
	q.Filters["category"] = "Laptop"
	if Matches(rec, q, itemSchema(), SearchSubstring) {
		t.Fatalf("expected filter to exclude record")
	}
}
