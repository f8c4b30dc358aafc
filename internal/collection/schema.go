package collection

import (
	"fmt"

	"assetdesk/pkg/domain"
)

// Field exposes one string-valued attribute of a record.
type Field[T any] struct {
	Name string
	Get  func(T) string
}

// Schema describes how a controller treats records of type T. It replaces
// runtime shape inference with explicit accessors supplied at construction.
type Schema[T any] struct {
	Entity domain.EntityKind
	// Resource names the screen in export filenames; defaults to Entity.Plural().
	Resource string
	// IdentityField names the identity attribute in validation messages.
	IdentityField  string
	IdentityOf     func(T) string
	AssignIdentity func(*T, string)
	Policy         IdentityPolicy
	Searchable     []Field[T]
	Filterable     []Field[T]
	Columns        []Column[T]
	// Validate checks a record's shape after its identity is settled; nil skips.
	Validate func(T) error
	// PageSize is the screen's page size; zero uses the controller default.
	PageSize int
}

func (s Schema[T]) check() error {
	switch {
	case s.Entity == "":
		return fmt.Errorf("schema entity required")
	case s.IdentityOf == nil || s.AssignIdentity == nil:
		return fmt.Errorf("schema %s: identity accessors required", s.Entity)
	case s.Policy == nil:
		return fmt.Errorf("schema %s: identity policy required", s.Entity)
	case len(s.Columns) == 0:
		return fmt.Errorf("schema %s: at least one export column required", s.Entity)
	}
	seen := make(map[string]struct{}, len(s.Filterable))
	for _, f := range s.Filterable {
		if f.Name == "" || f.Get == nil {
			return fmt.Errorf("schema %s: filterable field needs a name and accessor", s.Entity)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate filterable field %s", s.Entity, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	for _, f := range s.Searchable {
		if f.Get == nil {
			return fmt.Errorf("schema %s: searchable field %s has no accessor", s.Entity, f.Name)
		}
	}
	for _, c := range s.Columns {
		if c.Value == nil {
			return fmt.Errorf("schema %s: column %q has no accessor", s.Entity, c.Header)
		}
	}
	return nil
}

func (s Schema[T]) resource() string {
	if s.Resource != "" {
		return s.Resource
	}
	return s.Entity.Plural()
}

func (s Schema[T]) identityField() string {
	if s.IdentityField != "" {
		return s.IdentityField
	}
	return "id"
}

func (s Schema[T]) filterField(name string) (Field[T], bool) {
	for _, f := range s.Filterable {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}
