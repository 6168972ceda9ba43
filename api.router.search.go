package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupSearchRoutes injects the public-facing endpoints. The search is served
// under both the versioned path and the path of the first deployment.
func (api *APIHandler) SetupSearchRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.GET("/v1/search", m.public(api.Search))
	router.GET("/api/search", m.public(api.Search))
	return router
}
