package usecase

import (
	"fmt"

	"github.com/kmfahey/nutritracker/internal/domain"
)

// PageLimits bounds the page sizes a caller may ask for
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

func (l PageLimits) withDefaults() PageLimits {
	if l.DefaultSize <= 0 {
		l.DefaultSize = 25
	}
	if l.MaxSize < l.DefaultSize {
		l.MaxSize = l.DefaultSize
	}
	return l
}

// Page is one slice of a sorted result list. Pages are numbered from 1.
// NoMoreResults is set when the requested page lies past the last one.
type Page[T any] struct {
	Items         []T
	Number        int
	Size          int
	TotalItems    int
	TotalPages    int
	NoMoreResults bool
}

// Paginate cuts items into the requested page. A zero size selects the
// default; a zero number selects the first page.
func Paginate[T any](items []T, number, size int, limits PageLimits) (Page[T], error) {
	limits = limits.withDefaults()
	if size == 0 {
		size = limits.DefaultSize
	}
	if number == 0 {
		number = 1
	}
	if size < 0 || size > limits.MaxSize {
		return Page[T]{}, fmt.Errorf("%w: page size must be between 1 and %d", domain.ErrInvalidRequest, limits.MaxSize)
	}
	if number < 0 {
		return Page[T]{}, fmt.Errorf("%w: page number must be greater than zero", domain.ErrInvalidRequest)
	}

	total := len(items)
	page := Page[T]{
		Items:      []T{},
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}
	if number > page.TotalPages {
		page.NoMoreResults = total > 0 || number > 1
		return page, nil
	}
	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	page.Items = items[start:end]
	return page, nil
}
