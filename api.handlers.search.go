package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Search finds where a book can be bought and at which price.
//
// @Summary      Search book offers
// @Description  Aggregates digital offers from Apple Books and Google Play Books, metadata
// @Description  from Open Library and search links of physical retailers. At least one of
// @Description  isbn or q is required. An ISBN-10 is converted to its ISBN-13 form.
// @Tags         search
// @Produce      json
// @Param        isbn  query     string  false  "ISBN-10 or ISBN-13, separators allowed"
// @Param        q     query     string  false  "free text keywords"
// @Success      200   {object}  SearchResult
// @Failure      400   {object}  SearchError
// @Failure      429   {object}  APIError
// @Failure      500   {object}  APIError
// @Router       /v1/search [get]
func (api *APIHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	requestID := GetValueFromContext(ctx, RequestIDContextKey)
	logger := api.GetLoggerFromContext(ctx)
	params := r.URL.Query()

	result, err := api.searchService.Search(ctx, params.Get("isbn"), params.Get("q"))
	if errors.Is(err, ErrMissingQuery) {
		if err = WriteJSON(ctx, w, http.StatusBadRequest, SearchError{Error: MissingQueryMessage}); err != nil {
			logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		logger.Error("failed to search offers", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to search offers.", EmptyData)
		if err = WriteErrorResponse(ctx, w, errResp); err != nil {
			logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	w.Header().Set("Cache-Control", api.cacheControl)
	if err = WriteJSON(ctx, w, http.StatusOK, result); err != nil {
		logger.Error("failed to send search response", zap.String("request.id", requestID), zap.Error(err))
		return
	}
	logger.Info("search answered",
		zap.String("request.id", requestID),
		zap.Int("offers.count", len(result.Offers)),
	)
}
