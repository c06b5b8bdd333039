package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// FavoriteToggle reports the favorite status of a book after a toggle.
type FavoriteToggle struct {
	Book     Book `json:"book"`
	Favorite bool `json:"favorite"`
}

// GetFavorites serves the favorite books of the session.
//
//	@Summary	List the favorites
//	@Tags		favorites
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=[]Book}
//	@Router		/v1/favorites [get]
func (api *APIHandler) GetFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books, err := api.currentSession(r).Favorites.List(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the favorites", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Favorites fetched successfully.", &total, books)
}

// ToggleFavorite adds the book to the favorites or removes it when already there.
//
//	@Summary	Toggle a favorite
//	@Tags		favorites
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	APIResponse{data=FavoriteToggle}
//	@Failure	404	{object}	APIError
//	@Router		/v1/favorites/{id} [post]
func (api *APIHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, err)
		return
	}
	book, favorite, err := api.service.ToggleFavorite(r.Context(), api.currentSession(r), id)
	if err != nil {
		api.sendServiceError(w, r, "failed to toggle the favorite", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("favorite toggled", zap.Int("book.id", id), zap.Bool("favorite", favorite))
	message := "Book removed from favorites."
	if favorite {
		message = "Book added to favorites."
	}
	api.sendResponse(w, r, http.StatusOK, message, nil, FavoriteToggle{Book: book, Favorite: favorite})
}

// RemoveFavorite removes a book from the favorites.
//
//	@Summary	Remove a favorite
//	@Tags		favorites
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	APIResponse{data=[]Book}
//	@Failure	404	{object}	APIError
//	@Router		/v1/favorites/{id} [delete]
func (api *APIHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, err)
		return
	}
	favorites := api.currentSession(r).Favorites
	removed, err := favorites.Remove(r.Context(), id)
	if err != nil {
		api.sendServiceError(w, r, "failed to remove the favorite", err)
		return
	}
	if !removed {
		api.sendError(w, r, http.StatusNotFound, "book is not in the favorites", EmptyData, nil)
		return
	}
	books, err := favorites.List(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the favorites", err)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Book removed from favorites.", &total, books)
}
