package main

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// ShippingDetails holds the delivery form of the checkout.
type ShippingDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// PaymentForm is the raw payment step input. It is never persisted.
type PaymentForm struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// PaymentDetails is the persisted and masked view of a PaymentForm.
type PaymentDetails struct {
	Method   string `json:"method"`
	CardName string `json:"cardName,omitempty"`
	CardLast string `json:"cardLast4,omitempty"`
	Expiry   string `json:"expiry,omitempty"`
}

// OrderSummary is the priced breakdown of a list of cart entries.
type OrderSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Order is a confirmed checkout.
type Order struct {
	ID       string          `json:"id"`
	Session  string          `json:"session"`
	Lines    []CartEntry     `json:"lines"`
	Shipping ShippingDetails `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
	Summary  OrderSummary    `json:"summary"`
	PlacedAt time.Time       `json:"placedAt"`
}

// Pricing defines how shipping and tax are applied on top of a subtotal.
type Pricing struct {
	FreeShippingOver decimal.Decimal `yaml:"free_shipping_over" envconfig:"RSAP_PRICING_FREE_SHIPPING_OVER" json:"freeShippingOver"`
	ShippingFee      decimal.Decimal `yaml:"shipping_fee" envconfig:"RSAP_PRICING_SHIPPING_FEE" json:"shippingFee"`
	TaxRate          decimal.Decimal `yaml:"tax_rate" envconfig:"RSAP_PRICING_TAX_RATE" json:"taxRate"`
}

// DefaultPricing returns the checkout pricing of the storefront: free shipping
// above 50, a flat fee of 10 otherwise and a 5% tax.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingOver: decimal.NewFromInt(50),
		ShippingFee:      decimal.NewFromInt(10),
		TaxRate:          decimal.RequireFromString("0.05"),
	}
}

// Summarize prices the given entries. An empty list costs nothing, shipping included.
func (p Pricing) Summarize(entries []CartEntry) OrderSummary {
	subtotal := decimal.Zero
	for _, e := range entries {
		subtotal = subtotal.Add(e.LineTotal())
	}
	shipping := decimal.Zero
	if len(entries) > 0 && !subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = p.ShippingFee
	}
	tax := subtotal.Mul(p.TaxRate)
	return OrderSummary{
		Subtotal: Money(subtotal),
		Shipping: Money(shipping),
		Tax:      Money(tax),
		Total:    Money(subtotal.Add(shipping).Add(tax)),
	}
}
