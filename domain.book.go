package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Persisted slots and api payloads carry prices as plain JSON numbers,
// so decimals are emitted without quotes.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCategory labels books which do not carry any category.
const DefaultCategory = "Uncategorized"

// Catalog shelves displayed on the home page.
const (
	CollectionTrending = "trending"
	CollectionUpcoming = "upcoming"
)

var ErrBookNotFound = errors.New("book not found")

// Book represents an immutable catalog record.
type Book struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Author      string          `json:"author" yaml:"author"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Discount    decimal.Decimal `json:"discount" yaml:"discount"`
	Image       string          `json:"image" yaml:"image"`
	Rating      float64         `json:"rating" yaml:"rating"`
	Category    string          `json:"category,omitempty" yaml:"category,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Format      string          `json:"format,omitempty" yaml:"format,omitempty"`
	Collection  string          `json:"collection,omitempty" yaml:"collection,omitempty"`
	Reviews     []Review        `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

// Review is a reader opinion attached to a book.
type Review struct {
	ID      int     `json:"id" yaml:"id"`
	User    string  `json:"user" yaml:"user"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Comment string  `json:"comment" yaml:"comment"`
	Date    string  `json:"date" yaml:"date"`
}

// EffectivePrice returns the sale price when the book is discounted
// and the list price otherwise.
func (b Book) EffectivePrice() decimal.Decimal {
	if b.Discount.IsPositive() {
		return b.Discount
	}
	return b.Price
}

// CategoryOrDefault returns the book category or DefaultCategory.
func (b Book) CategoryOrDefault() string {
	if strings.TrimSpace(b.Category) == "" {
		return DefaultCategory
	}
	return b.Category
}

// Validate checks the record invariants enforced at catalog load time.
func (b Book) Validate() error {
	if b.ID <= 0 {
		return invalidBookError{b.ID, "id must be positive"}
	}
	if strings.TrimSpace(b.Title) == "" {
		return invalidBookError{b.ID, "title is required"}
	}
	if strings.TrimSpace(b.Author) == "" {
		return invalidBookError{b.ID, "author is required"}
	}
	if !b.Price.IsPositive() {
		return invalidBookError{b.ID, "price must be positive"}
	}
	if b.Discount.IsNegative() {
		return invalidBookError{b.ID, "discount must not be negative"}
	}
	if b.Discount.GreaterThan(b.Price) {
		return invalidBookError{b.ID, fmt.Sprintf("discount %s exceeds price %s", b.Discount, b.Price)}
	}
	if b.Rating < 0 || b.Rating > 5 {
		return invalidBookError{b.ID, fmt.Sprintf("rating %.1f is out of [0,5]", b.Rating)}
	}
	return nil
}

type invalidBookError struct {
	id     int
	reason string
}

func (e invalidBookError) Error() string {
	return fmt.Sprintf("book %d: %s", e.id, e.reason)
}
