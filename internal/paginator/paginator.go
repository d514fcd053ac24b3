// Package paginator splits ordered result sets into numbered pages.
package paginator

import (
	"errors"
	"strconv"
	"strings"
)

// LastPage is the page token that always resolves to the final page.
const LastPage = "last"

var ErrInvalidPage = errors.New("invalid page")

// Request is an unresolved page selection as it arrives in a query string.
type Request struct {
	Raw     string
	PerPage int
}

func NewRequest(raw string, perPage int) Request {
	return Request{Raw: strings.TrimSpace(raw), PerPage: perPage}
}

// Resolve turns the raw token into a 1-based page number for a result set of total items.
// An empty list still has page 1. Tokens that are not a number or "last", and
// numbers outside 1..NumPages, are ErrInvalidPage.
func (r Request) Resolve(total int64) (int, error) {
	numPages := NumPages(total, r.PerPage)

	if r.Raw == "" {
		return 1, nil
	}
	if r.Raw == LastPage {
		return numPages, nil
	}

	number, err := strconv.Atoi(r.Raw)
	if err != nil {
		return 0, ErrInvalidPage
	}
	if number < 1 || number > numPages {
		return 0, ErrInvalidPage
	}
	return number, nil
}

// Offset is the number of items preceding page number.
func Offset(number, perPage int) int {
	return (number - 1) * perPage
}

// NumPages is the page count for total items, never less than one.
func NumPages(total int64, perPage int) int {
	if perPage < 1 || total <= 0 {
		return 1
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
	PerPage  int
}

func NewPage[T any](items []T, number int, total int64, perPage int) *Page[T] {
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: NumPages(total, perPage),
		Total:    total,
		PerPage:  perPage,
	}
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	return p.Number - 1
}

// PageRange lists every page number, for the template's page links.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Len is the number of items on this page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}
