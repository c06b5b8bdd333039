package main

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize matches the storefront grid of 3 rows of 5 books.
	DefaultPageSize = 15
	// MaxPageSize bounds the number of books served by one page.
	MaxPageSize = 100
	// MaxSuggestions bounds the navbar quick search results.
	MaxSuggestions = 3
	// MaxSimilarBooks bounds the "you may also like" section.
	MaxSimilarBooks = 4
)

// CatalogProvider defines the read-only operations on the catalog.
type CatalogProvider interface {
	GetAll() []Book
	GetByID(id int) (Book, bool)
	Categories() []string
	Browse(q BrowseQuery) BrowseResult
	Suggest(query string) []Book
	Similar(id int) []Book
	Collection(name string) []Book
}

var _ CatalogProvider = (*Catalog)(nil) // ensure Catalog implements CatalogProvider.

// Catalog is the static list of books available for browsing. It is
// built once and never mutated so it is safe for concurrent use.
type Catalog struct {
	books []Book
	index map[int]int
}

// NewCatalog validates the provided books and builds a catalog keeping
// their order. Any invalid record or duplicated id rejects the whole list.
func NewCatalog(books []Book) (*Catalog, error) {
	c := &Catalog{
		books: make([]Book, 0, len(books)),
		index: make(map[int]int, len(books)),
	}
	for _, b := range books {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog: %w", err)
		}
		if _, exists := c.index[b.ID]; exists {
			return nil, fmt.Errorf("invalid catalog: book %d: duplicated id", b.ID)
		}
		c.index[b.ID] = len(c.books)
		c.books = append(c.books, b)
	}
	return c, nil
}

// GetAll returns a copy of all books in catalog order.
func (c *Catalog) GetAll() []Book {
	books := make([]Book, len(c.books))
	copy(books, c.books)
	return books
}

// GetByID returns the book with the given id if it exists.
func (c *Catalog) GetByID(id int) (Book, bool) {
	i, ok := c.index[id]
	if !ok {
		return Book{}, false
	}
	return c.books[i], true
}

// Categories returns the deduplicated categories of the catalog.
func (c *Catalog) Categories() []string {
	return CategoriesOf(c.books)
}

// CategoriesOf returns the distinct categories of books in first-seen
// order. Books without category are counted under DefaultCategory.
func CategoriesOf(books []Book) []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, b := range books {
		category := b.CategoryOrDefault()
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	return categories
}

// Browse filters, sorts and paginates the catalog from scratch.
func (c *Catalog) Browse(q BrowseQuery) BrowseResult {
	return Paginate(SortBooks(FilterBooks(c.books, q.Query, q.Category), q.Sort), q.Page, q.PerPage)
}

// Suggest returns the first books whose title or author contains the
// whole query, as displayed by the navbar quick search.
func (c *Catalog) Suggest(query string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	results := []Book{}
	if q == "" {
		return results
	}
	for _, b := range c.books {
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			results = append(results, b)
			if len(results) == MaxSuggestions {
				break
			}
		}
	}
	return results
}

// Similar returns books sharing the author or the category of the given book.
// Books without category all share DefaultCategory.
func (c *Catalog) Similar(id int) []Book {
	results := []Book{}
	book, ok := c.GetByID(id)
	if !ok {
		return results
	}
	for _, b := range c.books {
		if b.ID == book.ID {
			continue
		}
		if b.Author == book.Author || b.CategoryOrDefault() == book.CategoryOrDefault() {
			results = append(results, b)
			if len(results) == MaxSimilarBooks {
				break
			}
		}
	}
	return results
}

// Collection returns the books of a home page shelf in catalog order.
func (c *Catalog) Collection(name string) []Book {
	results := []Book{}
	for _, b := range c.books {
		if strings.EqualFold(b.Collection, name) {
			results = append(results, b)
		}
	}
	return results
}
