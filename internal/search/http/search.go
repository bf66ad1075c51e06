package http

import (
	"net/http"

	"github.com/nordsearch/pagefinder/internal/search/domain"
	"github.com/nordsearch/pagefinder/internal/search/service"
	"github.com/nordsearch/pagefinder/pkg/httpx"
	"github.com/nordsearch/pagefinder/pkg/slogx"
)

type SearchHandler struct {
	SearchService *service.SearchService
}

// ServeHTTP handles content search.
//
//	@Summary		Search pages
//	@Description	Returns pages whose content contains the query as a literal substring, scoped to one language.
//	@Description	An empty or missing q returns an empty result set. Results keep insertion order.
//	@Tags			Search
//	@Produce		json
//	@Param			q			query		string	false	"Substring to search for"
//	@Param			language	query		string	false	"Language code, defaults to en"
//	@Success		200			{object}	SearchResponse			"Matching pages"
//	@Failure		500			{object}	httpx.ErrorResponse		"Internal server error"
//	@Router			/api/search [get].
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	query := r.URL.Query().Get("q")
	language := r.URL.Query().Get("language")

	pages, err := h.SearchService.Search(ctx, query, language)
	if err != nil {
		log.Error("search failed", "query", query, "language", language, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if pages == nil {
		pages = []domain.Page{}
	}

	httpx.WriteJSON(w, http.StatusOK, SearchResponse{
		Data:  pages,
		Query: query,
	})
}
