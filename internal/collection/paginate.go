package collection

// DefaultPageSize is used when a screen does not declare its own.
const DefaultPageSize = 5

// Page is one window over a derived view.
type Page[T any] struct {
	Items       []T
	Total       int
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// TotalPages returns max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage forces page into [1, TotalPages(n, size)].
func ClampPage(page, n, size int) int {
	last := TotalPages(n, size)
	switch {
	case page < 1:
		return 1
	case page > last:
		return last
	default:
		return page
	}
}

// Paginate slices view into the window for page, clamping page first. Items
// is a copy and never nil.
func Paginate[T any](view []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	current := ClampPage(page, len(view), size)
	start := (current - 1) * size
	end := min(start+size, len(view))
	items := make([]T, 0, max(end-start, 0))
	if start < len(view) {
		items = append(items, view[start:end]...)
	}
	return Page[T]{
		Items:       items,
		Total:       len(view),
		TotalPages:  TotalPages(len(view), size),
		CurrentPage: current,
		PageSize:    size,
	}
}
