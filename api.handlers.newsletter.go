package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewsletterView tells whether the session signed up to the newsletter.
type NewsletterView struct {
	Subscribed   bool                    `json:"subscribed"`
	Subscription *NewsletterSubscription `json:"subscription,omitempty"`
}

// GetNewsletter serves the newsletter sign up of the session.
//
//	@Summary	Get the newsletter sign up
//	@Tags		session
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=NewsletterView}
//	@Router		/v1/newsletter [get]
func (api *APIHandler) GetNewsletter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sub, err := api.currentSession(r).Newsletter.Subscription(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the newsletter subscription", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Newsletter subscription fetched successfully.", nil, NewsletterView{Subscribed: sub != nil, Subscription: sub})
}

// SubscribeNewsletter signs the session up to the newsletter.
//
//	@Summary	Subscribe to the newsletter
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Param		body	body		NewsletterRequest	true	"email address"
//	@Success	201		{object}	APIResponse{data=NewsletterSubscription}
//	@Failure	400		{object}	APIError{data=ValidationError}
//	@Router		/v1/newsletter [post]
func (api *APIHandler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req NewsletterRequest
	if err := DecodeJSONBody(r, &req, false); err != nil {
		api.sendServiceError(w, r, "failed to subscribe to the newsletter", err)
		return
	}
	sub, err := api.currentSession(r).Newsletter.Subscribe(r.Context(), req.Email)
	if err != nil {
		api.sendServiceError(w, r, "failed to subscribe to the newsletter", err)
		return
	}
	api.sendResponse(w, r, http.StatusCreated, "Thank you for subscribing to our newsletter!", nil, sub)
}
