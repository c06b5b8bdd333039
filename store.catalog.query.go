package main

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAll is the category filter sentinel which keeps every book.
const CategoryAll = "all"

// Supported sort orders of the browsing view.
const (
	SortDefault      = "default"
	SortPriceLowHigh = "price-low-high"
	SortPriceHighLow = "price-high-low"
	SortRating       = "rating"
	SortNewest       = "newest"
	SortTitleAsc     = "title-az"
	SortTitleDesc    = "title-za"
)

// SortOrders lists the accepted values of the sort parameter.
var SortOrders = []string{SortDefault, SortPriceLowHigh, SortPriceHighLow, SortRating, SortNewest, SortTitleAsc, SortTitleDesc}

// BrowseQuery describes a catalog browsing request.
type BrowseQuery struct {
	Query    string
	Category string
	Sort     string
	Page     int
	PerPage  int
}

// BrowseResult is one page of the filtered and sorted catalog.
type BrowseResult struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	TotalBooks int    `json:"totalBooks"`
	TotalPages int    `json:"totalPages"`
}

// IsValidSortOrder reports whether s is a known sort order. The empty
// string stands for the default order.
func IsValidSortOrder(s string) bool {
	return s == "" || slices.Contains(SortOrders, s)
}

// FilterBooks keeps the books matching every whitespace separated term of
// query in their title or author, and belonging to category. Matching is
// case-insensitive. An empty category or CategoryAll disables the category filter.
func FilterBooks(books []Book, query, category string) []Book {
	terms := strings.Fields(strings.ToLower(query))
	category = strings.TrimSpace(category)
	filtered := []Book{}
	for _, b := range books {
		if category != "" && !strings.EqualFold(category, CategoryAll) && !strings.EqualFold(b.CategoryOrDefault(), category) {
			continue
		}
		if matchesAllTerms(b, terms) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func matchesAllTerms(b Book, terms []string) bool {
	title, author := strings.ToLower(b.Title), strings.ToLower(b.Author)
	for _, term := range terms {
		if !strings.Contains(title, term) && !strings.Contains(author, term) {
			return false
		}
	}
	return true
}

// SortBooks returns a sorted copy of books. Ties keep their catalog order.
func SortBooks(books []Book, order string) []Book {
	sorted := slices.Clone(books)
	switch order {
	case SortPriceLowHigh:
		slices.SortStableFunc(sorted, func(a, b Book) int {
			return a.EffectivePrice().Cmp(b.EffectivePrice())
		})
	case SortPriceHighLow:
		slices.SortStableFunc(sorted, func(a, b Book) int {
			return b.EffectivePrice().Cmp(a.EffectivePrice())
		})
	case SortRating:
		slices.SortStableFunc(sorted, func(a, b Book) int {
			return compareFloat(b.Rating, a.Rating)
		})
	case SortNewest:
		slices.SortStableFunc(sorted, func(a, b Book) int {
			return b.ID - a.ID
		})
	case SortTitleAsc, SortTitleDesc:
		// collators are not safe for concurrent use.
		c := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(sorted, func(a, b Book) int {
			if order == SortTitleDesc {
				return c.CompareString(b.Title, a.Title)
			}
			return c.CompareString(a.Title, b.Title)
		})
	}
	return sorted
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate returns the requested 1-based page. Invalid page or size values
// fall back to the first page and DefaultPageSize, sizes above MaxPageSize
// are capped. A page past the end is empty but still reports the real totals.
func Paginate(books []Book, page, perPage int) BrowseResult {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	perPage = min(perPage, MaxPageSize)
	if page <= 0 {
		page = 1
	}
	total := len(books)
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	result := BrowseResult{
		Books:      []Book{},
		Page:       page,
		PerPage:    perPage,
		TotalBooks: total,
		TotalPages: pages,
	}
	// page is compared before any multiplication so huge values cannot overflow.
	if page > pages {
		return result
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	result.Books = append(result.Books, books[start:end]...)
	return result
}
