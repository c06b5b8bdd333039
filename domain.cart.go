package main

import (
	"github.com/shopspring/decimal"
)

// CartEntry is a book placed into the cart with its quantity. The
// book fields are flattened to keep the persisted layout of the
// `cartItems` slot: an array of books each carrying a quantity.
type CartEntry struct {
	Book
	Quantity int `json:"quantity"`
}

// LineTotal returns the effective price multiplied by the quantity.
func (e CartEntry) LineTotal() decimal.Decimal {
	return e.EffectivePrice().Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// AddResult reports the outcome of an add to cart attempt.
type AddResult int

const (
	// Added means a new entry with quantity 1 was inserted.
	Added AddResult = iota
	// AlreadyInCart means an entry already existed and nothing changed.
	AlreadyInCart
)

func (r AddResult) String() string {
	if r == AlreadyInCart {
		return "already-in-cart"
	}
	return "added"
}

// Money rounds an amount to cents for display and persistence.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
