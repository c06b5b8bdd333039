package main

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation failed")

var (
	emailPattern  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	cardPattern   = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// Accepted payment methods.
const (
	PaymentMastercard = "mastercard"
	PaymentVisa       = "visa"
	PaymentPaypal     = "paypal"
)

// ValidationError reports the form field which failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (v *ValidationError) Error() string {
	return v.Field + ": " + v.Reason
}

// Unwrap allows errors.Is(err, ErrValidation).
func (v *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidateShipping checks the shipping step form.
func ValidateShipping(s *ShippingDetails) error {
	if s == nil {
		return invalidField("shipping", "is required")
	}
	required := []struct {
		field string
		value string
	}{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"city", s.City},
		{"zipCode", s.ZipCode},
		{"country", s.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalidField(r.field, "is required")
		}
	}
	if !emailPattern.MatchString(s.Email) {
		return invalidField("email", "is not a valid email address")
	}
	return nil
}

// ValidatePayment checks the payment step form against the current time and
// returns its masked persisted form.
func ValidatePayment(p *PaymentForm, now time.Time) (PaymentDetails, error) {
	if p == nil {
		return PaymentDetails{}, invalidField("payment", "is required")
	}
	method := strings.ToLower(strings.TrimSpace(p.Method))
	switch method {
	case PaymentPaypal:
		return PaymentDetails{Method: method}, nil
	case PaymentMastercard, PaymentVisa:
	default:
		return PaymentDetails{}, invalidField("method", "must be one of mastercard, visa or paypal")
	}

	number := strings.ReplaceAll(p.CardNumber, " ", "")
	if !cardPattern.MatchString(number) {
		return PaymentDetails{}, invalidField("cardNumber", "must contain 13 to 19 digits")
	}
	if strings.TrimSpace(p.CardName) == "" {
		return PaymentDetails{}, invalidField("cardName", "is required")
	}
	m := expiryPattern.FindStringSubmatch(p.Expiry)
	if m == nil {
		return PaymentDetails{}, invalidField("expiry", "must use the MM/YY format")
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	// a card stays valid until the end of its expiry month.
	end := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(end) {
		return PaymentDetails{}, invalidField("expiry", "card is expired")
	}
	if !cvvPattern.MatchString(p.CVV) {
		return PaymentDetails{}, invalidField("cvv", "must contain 3 or 4 digits")
	}
	return PaymentDetails{
		Method:   method,
		CardName: strings.TrimSpace(p.CardName),
		CardLast: number[len(number)-4:],
		Expiry:   p.Expiry,
	}, nil
}

// ValidateNewsletterEmail checks the address of a newsletter sign up.
func ValidateNewsletterEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalidField("email", "is required")
	}
	if !emailPattern.MatchString(email) {
		return invalidField("email", "is not a valid email address")
	}
	return nil
}
