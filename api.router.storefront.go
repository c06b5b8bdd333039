package main

import (
	"github.com/julienschmidt/httprouter"
)

// EventsPath is the server-sent events endpoint. It is served outside
// of the request timeout handler since the stream stays open.
const EventsPath = "/v1/events"

// SetupStorefrontRoutes injects the session scoped api endpoints.
func (api *APIHandler) SetupStorefrontRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/v1/cart", m.public(api.GetCart))
	router.DELETE("/v1/cart", m.public(api.ClearCart))
	router.POST("/v1/cart/items", m.public(api.AddCartItem))
	router.PUT("/v1/cart/items/:id", m.public(api.UpdateCartItem))
	router.DELETE("/v1/cart/items/:id", m.public(api.RemoveCartItem))

	router.GET("/v1/favorites", m.public(api.GetFavorites))
	router.POST("/v1/favorites/:id", m.public(api.ToggleFavorite))
	router.DELETE("/v1/favorites/:id", m.public(api.RemoveFavorite))

	router.GET("/v1/theme", m.public(api.GetTheme))
	router.PUT("/v1/theme", m.public(api.UpdateTheme))

	router.GET("/v1/checkout", m.public(api.GetCheckout))
	router.POST("/v1/checkout/next", m.public(api.CheckoutNext))
	router.POST("/v1/checkout/back", m.public(api.CheckoutBack))
	router.POST("/v1/checkout/confirm", m.public(api.ConfirmCheckout))
	router.POST("/v1/checkout/reset", m.public(api.ResetCheckout))
	router.GET("/v1/orders/:id", m.public(api.GetOrder))

	router.GET("/v1/newsletter", m.public(api.GetNewsletter))
	router.POST("/v1/newsletter", m.public(api.SubscribeNewsletter))

	router.GET("/v1/session", m.public(api.GetSession))
	router.GET(EventsPath, m.public(api.StreamEvents))
	return router
}
