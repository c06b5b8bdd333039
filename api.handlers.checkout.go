package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CheckoutView is the checkout page content.
type CheckoutView struct {
	State   CheckoutState `json:"state"`
	Summary OrderSummary  `json:"summary"`
}

// GetCheckout serves the wizard state and the priced cart.
//
//	@Summary	Get the checkout
//	@Tags		checkout
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=CheckoutView}
//	@Router		/v1/checkout [get]
func (api *APIHandler) GetCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := api.currentSession(r)
	state, err := s.Checkout.State(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the checkout", err)
		return
	}
	api.sendCheckoutView(w, r, s, state, "Checkout fetched successfully.")
}

// CheckoutNext submits the form of the current step and moves forward.
//
//	@Summary	Submit a checkout step
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CheckoutInput	true	"shipping or payment form"
//	@Success	200		{object}	APIResponse{data=CheckoutView}
//	@Failure	400		{object}	APIError{data=ValidationError}
//	@Failure	409		{object}	APIError
//	@Router		/v1/checkout/next [post]
func (api *APIHandler) CheckoutNext(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input CheckoutInput
	if err := DecodeJSONBody(r, &input, true); err != nil {
		api.sendServiceError(w, r, "failed to submit the checkout step", err)
		return
	}
	s := api.currentSession(r)
	state, err := s.Checkout.Next(r.Context(), input)
	if err != nil {
		api.sendServiceError(w, r, "failed to submit the checkout step", err)
		return
	}
	api.sendCheckoutView(w, r, s, state, "Checkout moved to "+string(state.Step)+" step.")
}

// CheckoutBack returns to the previous step.
//
//	@Summary	Go back one checkout step
//	@Tags		checkout
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=CheckoutView}
//	@Failure	409	{object}	APIError
//	@Router		/v1/checkout/back [post]
func (api *APIHandler) CheckoutBack(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := api.currentSession(r)
	state, err := s.Checkout.Back(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to go back in checkout", err)
		return
	}
	api.sendCheckoutView(w, r, s, state, "Checkout moved back to "+string(state.Step)+" step.")
}

// ConfirmCheckout places the order from the review step and empties the cart.
//
//	@Summary	Place the order
//	@Tags		checkout
//	@Produce	json
//	@Success	201	{object}	APIResponse{data=Order}
//	@Failure	409	{object}	APIError
//	@Router		/v1/checkout/confirm [post]
func (api *APIHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	order, err := api.service.PlaceOrder(r.Context(), api.currentSession(r))
	if err != nil && order.ID == "" {
		api.sendServiceError(w, r, "failed to place the order", err)
		return
	}
	logger := api.GetLoggerFromContext(r.Context())
	if err != nil {
		logger.Error("order placed with errors", zap.String("order.id", order.ID), zap.Error(err))
	}
	logger.Info("order placed", zap.String("order.id", order.ID))
	api.sendResponse(w, r, http.StatusCreated, "Your order has been placed successfully. Thank you for shopping with us!", nil, order)
}

// ResetCheckout starts a new checkout.
//
//	@Summary	Restart the checkout
//	@Tags		checkout
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=CheckoutView}
//	@Router		/v1/checkout/reset [post]
func (api *APIHandler) ResetCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := api.currentSession(r)
	state, err := s.Checkout.Reset(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to reset the checkout", err)
		return
	}
	api.sendCheckoutView(w, r, s, state, "Checkout restarted successfully.")
}

// GetOrder serves an archived order of the session.
//
//	@Summary	Get an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"order id"
//	@Success	200	{object}	APIResponse{data=Order}
//	@Failure	400	{object}	APIError
//	@Failure	404	{object}	APIError
//	@Router		/v1/orders/{id} [get]
func (api *APIHandler) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(OrderIDPrefix, id); !ok {
		api.sendError(w, r, http.StatusBadRequest, "order id provided is not valid", EmptyData, nil)
		return
	}
	order, err := api.service.GetOrder(r.Context(), api.currentSession(r), id)
	if err != nil {
		api.sendServiceError(w, r, "failed to get the order", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Order fetched successfully.", nil, order)
}

func (api *APIHandler) sendCheckoutView(w http.ResponseWriter, r *http.Request, s *Session, state CheckoutState, message string) {
	summary, err := s.Checkout.Summary(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to price the cart", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, message, nil, CheckoutView{State: state, Summary: summary})
}
