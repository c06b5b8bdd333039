package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// BookDetails is the book page content: the book and a few similar ones.
type BookDetails struct {
	Book    Book   `json:"book"`
	Similar []Book `json:"similar"`
}

// GetAllBooks serves one page of the catalog filtered by the query
// terms and the category, then sorted by the requested order.
//
//	@Summary	Browse the catalog
//	@Tags		catalog
//	@Produce	json
//	@Param		q			query		string	false	"search terms matched against title and author"
//	@Param		category	query		string	false	"category name or all"
//	@Param		sort		query		string	false	"default, price-low-high, price-high-low, rating, newest, title-az, title-za"
//	@Param		page		query		int		false	"page number starting at 1"
//	@Param		per_page	query		int		false	"page size, 15 by default"
//	@Success	200			{object}	APIResponse{data=BrowseResult}
//	@Failure	400			{object}	APIError
//	@Router		/v1/books [get]
//
//nolint:bodyclose
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// large catalogs may take longer to be written than the server default write timeout.
	api.extendWriteDeadline(w)

	query, err := ParseBrowseQuery(r)
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "invalid catalog query", err.Error(), err)
		return
	}
	result := api.service.Catalog().Browse(query)
	total := result.TotalBooks
	api.sendResponse(w, r, http.StatusOK, "Books fetched successfully.", &total, result)
}

// GetOneBook serves a book with its similar books.
//
//	@Summary	Get a book
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		int	true	"book id"
//	@Success	200	{object}	APIResponse{data=BookDetails}
//	@Failure	400	{object}	APIError
//	@Failure	404	{object}	APIError
//	@Router		/v1/books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := ParseBookID(ps.ByName("id"))
	if err != nil {
		api.sendError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, err)
		return
	}
	catalog := api.service.Catalog()
	book, found := catalog.GetByID(id)
	if !found {
		api.sendError(w, r, http.StatusNotFound, "book does not exist", EmptyData, ErrBookNotFound)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Book fetched successfully.", nil, BookDetails{Book: book, Similar: catalog.Similar(id)})
}

// GetCategories serves the distinct categories of the catalog.
//
//	@Summary	List the categories
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=[]string}
//	@Router		/v1/categories [get]
func (api *APIHandler) GetCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories := api.service.Catalog().Categories()
	total := len(categories)
	api.sendResponse(w, r, http.StatusOK, "Categories fetched successfully.", &total, categories)
}

// GetSuggestions serves the navbar quick search results.
//
//	@Summary	Quick search
//	@Tags		catalog
//	@Produce	json
//	@Param		q	query		string	true	"text matched against title or author"
//	@Success	200	{object}	APIResponse{data=[]Book}
//	@Router		/v1/suggestions [get]
func (api *APIHandler) GetSuggestions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books := api.service.Catalog().Suggest(r.URL.Query().Get("q"))
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Suggestions fetched successfully.", &total, books)
}

// GetCollection serves the books of a home page shelf.
//
//	@Summary	List a collection
//	@Tags		catalog
//	@Produce	json
//	@Param		name	path		string	true	"trending or upcoming"
//	@Success	200		{object}	APIResponse{data=[]Book}
//	@Failure	404		{object}	APIError
//	@Router		/v1/collections/{name} [get]
func (api *APIHandler) GetCollection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	books := api.service.Catalog().Collection(name)
	if len(books) == 0 {
		api.sendError(w, r, http.StatusNotFound, "collection does not exist", EmptyData, nil)
		return
	}
	total := len(books)
	api.sendResponse(w, r, http.StatusOK, "Collection fetched successfully.", &total, books)
}
