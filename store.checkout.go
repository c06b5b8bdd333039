package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const OrderIDPrefix string = "o"

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
)

// CheckoutStep is a state of the checkout wizard.
type CheckoutStep string

const (
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
	StepReview   CheckoutStep = "review"
	StepPlaced   CheckoutStep = "placed"
)

// CheckoutState is the persisted wizard progress of a session.
type CheckoutState struct {
	Step     CheckoutStep     `json:"step"`
	Shipping *ShippingDetails `json:"shipping,omitempty"`
	Payment  *PaymentDetails  `json:"payment,omitempty"`
	OrderID  string           `json:"orderId,omitempty"`
}

// CheckoutInput carries the form of the current step to Next.
type CheckoutInput struct {
	Shipping *ShippingDetails `json:"shipping,omitempty"`
	Payment  *PaymentForm     `json:"payment,omitempty"`
}

// Checkout drives the shipping -> payment -> review -> placed wizard of one
// session. A failed step leaves the persisted state untouched.
type Checkout struct {
	mu        sync.Mutex
	logger    *zap.Logger
	slot      *persistentSlot[CheckoutState]
	cart      *CartStore
	pricing   Pricing
	clock     Clocker
	ids       UIDHandler
	namespace string
}

// NewCheckout provides the checkout wizard of the session identified by namespace.
func NewCheckout(logger *zap.Logger, storage SlotStorage, cart *CartStore, pricing Pricing, clock Clocker, ids UIDHandler, namespace string) *Checkout {
	return &Checkout{
		logger:    logger,
		slot:      newPersistentSlot[CheckoutState](logger, storage, namespace, SlotCheckout),
		cart:      cart,
		pricing:   pricing,
		clock:     clock,
		ids:       ids,
		namespace: namespace,
	}
}

// State returns the current wizard state. A fresh or unreadable state starts at shipping.
func (co *Checkout) State(ctx context.Context) (CheckoutState, error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.load(ctx)
}

func (co *Checkout) load(ctx context.Context) (CheckoutState, error) {
	state, err := co.slot.load(ctx)
	if err != nil {
		return state, err
	}
	switch state.Step {
	case StepShipping, StepPayment, StepReview, StepPlaced:
	default:
		state = CheckoutState{Step: StepShipping}
	}
	return state, nil
}

// Summary prices the current cart with the checkout pricing.
func (co *Checkout) Summary(ctx context.Context) (OrderSummary, error) {
	entries, err := co.cart.Items(ctx)
	if err != nil {
		return OrderSummary{}, err
	}
	return co.pricing.Summarize(entries), nil
}

// Next validates the form of the current step and moves to the following one.
// The review step only moves forward through Confirm.
func (co *Checkout) Next(ctx context.Context, input CheckoutInput) (CheckoutState, error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	state, err := co.load(ctx)
	if err != nil {
		return state, err
	}

	switch state.Step {
	case StepShipping:
		if err = co.ensureCartNotEmpty(ctx); err != nil {
			return state, err
		}
		if err = ValidateShipping(input.Shipping); err != nil {
			return state, err
		}
		shipping := *input.Shipping
		state.Shipping = &shipping
		state.Step = StepPayment
	case StepPayment:
		payment, err := ValidatePayment(input.Payment, co.clock.Now())
		if err != nil {
			return state, err
		}
		state.Payment = &payment
		state.Step = StepReview
	default:
		return state, fmt.Errorf("%w: next from %s", ErrInvalidTransition, state.Step)
	}

	if err = co.slot.save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// Back returns to the previous step from payment or review. Entered data is kept.
func (co *Checkout) Back(ctx context.Context) (CheckoutState, error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	state, err := co.load(ctx)
	if err != nil {
		return state, err
	}
	switch state.Step {
	case StepPayment:
		state.Step = StepShipping
	case StepReview:
		state.Step = StepPayment
	default:
		return state, fmt.Errorf("%w: back from %s", ErrInvalidTransition, state.Step)
	}
	if err = co.slot.save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// Confirm places the order from the review step: the state moves to placed
// and the cart is cleared, which publishes TopicCartChanged.
func (co *Checkout) Confirm(ctx context.Context) (Order, error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	state, err := co.load(ctx)
	if err != nil {
		return Order{}, err
	}
	if state.Step != StepReview || state.Shipping == nil || state.Payment == nil {
		return Order{}, fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, state.Step)
	}
	entries, err := co.cart.Items(ctx)
	if err != nil {
		return Order{}, err
	}
	if len(entries) == 0 {
		return Order{}, ErrEmptyCart
	}

	order := Order{
		ID:       co.ids.Generate(OrderIDPrefix),
		Session:  co.namespace,
		Lines:    entries,
		Shipping: *state.Shipping,
		Payment:  *state.Payment,
		Summary:  co.pricing.Summarize(entries),
		PlacedAt: co.clock.Now(),
	}

	state.Step = StepPlaced
	state.OrderID = order.ID
	if err = co.slot.save(ctx, state); err != nil {
		return Order{}, err
	}
	if err = co.cart.Clear(ctx); err != nil {
		return order, fmt.Errorf("order %s placed but cart not cleared: %w", order.ID, err)
	}
	co.logger.Info("checkout: order placed",
		zap.String("session.id", co.namespace),
		zap.String("order.id", order.ID),
		zap.String("order.total", order.Summary.Total.StringFixed(2)),
	)
	return order, nil
}

// Reset discards the wizard progress and starts again at shipping.
func (co *Checkout) Reset(ctx context.Context) (CheckoutState, error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if err := co.slot.clear(ctx); err != nil {
		return CheckoutState{}, err
	}
	return CheckoutState{Step: StepShipping}, nil
}

func (co *Checkout) ensureCartNotEmpty(ctx context.Context) error {
	count, err := co.cart.EntryCount(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrEmptyCart
	}
	return nil
}
