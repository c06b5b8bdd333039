package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the catalog related api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.GET("/v1/categories", m.public(api.GetCategories))
	router.GET("/v1/suggestions", m.public(api.GetSuggestions))
	router.GET("/v1/collections/:name", m.public(api.GetCollection))
	return router
}
