package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// OpsEndpoint describes one internal operations route.
type OpsEndpoint struct {
	Path   string `json:"path"`
	Usage  string `json:"usage"`
	handle httprouter.Handle
}

// HandlerWrapper adapts a standard http.Handler to the router handle signature.
func HandlerWrapper(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

// OpsIndex lists the operations endpoints exposed by this book offers instance.
func (api *APIHandler) OpsIndex(endpoints []OpsEndpoint) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
		err := WriteJSON(r.Context(), w, http.StatusOK,
			map[string]interface{}{
				"requestid": requestID,
				"service":   serviceName,
				"version":   api.stats.version,
				"endpoints": endpoints,
			},
		)
		if err != nil {
			api.logger.Error("failed to send ops index response", zap.String("request.id", requestID), zap.Error(err))
		}
	}
}
