package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartView is the cart page content.
type CartView struct {
	Items      []CartEntry     `json:"items"`
	ItemCount  int             `json:"itemCount"`
	EntryCount int             `json:"entryCount"`
	Total      decimal.Decimal `json:"total"`
	Summary    OrderSummary    `json:"summary"`
}

// AddToCartResult reports the book concerned by an add to cart request.
type AddToCartResult struct {
	Book   Book   `json:"book"`
	Result string `json:"result"`
}

func newCartView(ctx context.Context, s *Session) (CartView, error) {
	entries, err := s.Cart.Items(ctx)
	if err != nil {
		return CartView{}, err
	}
	summary, err := s.Checkout.Summary(ctx)
	if err != nil {
		return CartView{}, err
	}
	return CartView{
		Items:      entries,
		ItemCount:  CartItemCount(entries),
		EntryCount: len(entries),
		Total:      CartTotal(entries),
		Summary:    summary,
	}, nil
}

// GetCart serves the cart of the session.
//
//	@Summary	Get the cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=CartView}
//	@Failure	500	{object}	APIError
//	@Router		/v1/cart [get]
func (api *APIHandler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := newCartView(r.Context(), api.currentSession(r))
	if err != nil {
		api.sendServiceError(w, r, "failed to get the cart", err)
		return
	}
	total := view.EntryCount
	api.sendResponse(w, r, http.StatusOK, "Cart fetched successfully.", &total, view)
}

// AddCartItem adds a catalog book to the cart. A book already in the
// cart is left untouched and the response says so with 200.
//
//	@Summary	Add a book to the cart
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CartItemRequest	true	"book to add"
//	@Success	201		{object}	APIResponse{data=AddToCartResult}
//	@Success	200		{object}	APIResponse{data=AddToCartResult}
//	@Failure	400		{object}	APIError
//	@Failure	404		{object}	APIError
//	@Router		/v1/cart/items [post]
func (api *APIHandler) AddCartItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CartItemRequest
	if err := DecodeJSONBody(r, &req, false); err != nil {
		api.sendServiceError(w, r, "failed to add the book to cart", err)
		return
	}
	if req.BookID <= 0 {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, nil)
		return
	}
	book, result, err := api.service.AddToCart(r.Context(), api.currentSession(r), req.BookID)
	if err != nil {
		api.sendServiceError(w, r, "failed to add the book to cart", err)
		return
	}
	data := AddToCartResult{Book: book, Result: result.String()}
	if result == AlreadyInCart {
		api.sendResponse(w, r, http.StatusOK, "Book is already in the cart.", nil, data)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("book added to cart", zap.Int("book.id", book.ID))
	api.sendResponse(w, r, http.StatusCreated, "Book added to the cart successfully.", nil, data)
}

// UpdateCartItem sets the quantity of a cart entry. A quantity lower
// than one removes the entry.
//
//	@Summary	Set a cart entry quantity
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"book id"
//	@Param		body	body		QuantityRequest	true	"new quantity"
//	@Success	200		{object}	APIResponse{data=CartView}
//	@Failure	400		{object}	APIError
//	@Failure	404		{object}	APIError
//	@Router		/v1/cart/items/{id} [put]
func (api *APIHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, err)
		return
	}
	var req QuantityRequest
	if err = DecodeJSONBody(r, &req, false); err != nil {
		api.sendServiceError(w, r, "failed to update the cart", err)
		return
	}
	if req.Quantity == nil {
		api.sendError(w, r, http.StatusBadRequest, "quantity is required", EmptyData, nil)
		return
	}
	s := api.currentSession(r)
	found, err := s.Cart.SetQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		api.sendServiceError(w, r, "failed to update the cart", err)
		return
	}
	if !found {
		api.sendError(w, r, http.StatusNotFound, "book is not in the cart", EmptyData, nil)
		return
	}
	api.sendCartView(w, r, s, "Cart updated successfully.")
}

// RemoveCartItem deletes a cart entry.
//
//	@Summary	Remove a book from the cart
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	APIResponse{data=CartView}
//	@Failure	404	{object}	APIError
//	@Router		/v1/cart/items/{id} [delete]
func (api *APIHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, err)
		return
	}
	s := api.currentSession(r)
	removed, err := s.Cart.Remove(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, "failed to remove the book from cart", err)
		return
	}
	if !removed {
		api.sendError(w, r, http.StatusNotFound, "book is not in the cart", EmptyData, nil)
		return
	}
	api.sendCartView(w, r, s, "Book removed from the cart successfully.")
}

// ClearCart empties the cart.
//
//	@Summary	Clear the cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=CartView}
//	@Router		/v1/cart [delete]
func (api *APIHandler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := api.currentSession(r)
	if err := s.Cart.Clear(r.Context()); err != nil {
		api.sendServiceError(w, r, "failed to clear the cart", err)
		return
	}
	api.sendCartView(w, r, s, "Cart cleared successfully.")
}

func (api *APIHandler) sendCartView(w http.ResponseWriter, r *http.Request, s *Session, message string) {
	view, err := newCartView(r.Context(), s)
	if err != nil {
		api.sendServiceError(w, r, "failed to get the cart", err)
		return
	}
	total := view.EntryCount
	api.sendResponse(w, r, http.StatusOK, message, &total, view)
}
