package main

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NewsletterSubscription is the newsletter sign up of a session.
type NewsletterSubscription struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// NewsletterStore keeps the newsletter sign up of one session.
type NewsletterStore struct {
	slot  *persistentSlot[*NewsletterSubscription]
	clock Clocker
}

// NewNewsletterStore provides the newsletter sign up of the session identified by namespace.
func NewNewsletterStore(logger *zap.Logger, storage SlotStorage, clock Clocker, namespace string) *NewsletterStore {
	return &NewsletterStore{
		slot:  newPersistentSlot[*NewsletterSubscription](logger, storage, namespace, SlotNewsletter),
		clock: clock,
	}
}

// Subscription returns the recorded sign up or nil.
func (ns *NewsletterStore) Subscription(ctx context.Context) (*NewsletterSubscription, error) {
	return ns.slot.load(ctx)
}

// Subscribe records email once validated. A new sign up replaces the previous address.
func (ns *NewsletterStore) Subscribe(ctx context.Context, email string) (NewsletterSubscription, error) {
	email = strings.TrimSpace(email)
	if err := ValidateNewsletterEmail(email); err != nil {
		return NewsletterSubscription{}, err
	}
	sub := NewsletterSubscription{Email: email, SubscribedAt: ns.clock.Now()}
	if err := ns.slot.save(ctx, &sub); err != nil {
		return NewsletterSubscription{}, err
	}
	return sub, nil
}
