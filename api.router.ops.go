package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

var profiles = []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"}

func (api *APIHandler) opsEndpoints() []OpsEndpoint {
	endpoints := []OpsEndpoint{
		{Path: "/ops/configs", Usage: "running configuration with secrets masked", handle: api.GetConfigs},
		{Path: "/ops/stats", Usage: "requests counters, uptime and maintenance state", handle: api.GetStatistics},
		{Path: "/ops/maintenance", Usage: "?status=enable&msg=<text> or ?status=disable", handle: api.Maintenance},
		{Path: "/ops/debug/vars", Usage: "memory statistics and goroutines count", handle: GetMemStats},
		{Path: "/ops/debug/gc", Usage: "run the garbage collector", handle: api.RunGC},
		{Path: "/ops/debug/fos", Usage: "return freed memory to the operating system", handle: api.FreeOSMemory},
	}
	if !api.config.ProfilerEndpointsEnable {
		return endpoints
	}

	endpoints = append(endpoints,
		OpsEndpoint{Path: "/ops/debug/pprof/", Usage: "profiles index", handle: HandlerWrapper(http.HandlerFunc(pprof.Index))},
		OpsEndpoint{Path: "/ops/debug/pprof/profile", Usage: "cpu profile, ?seconds=<n>", handle: HandlerWrapper(http.HandlerFunc(pprof.Profile))},
		OpsEndpoint{Path: "/ops/debug/pprof/trace", Usage: "execution trace, ?seconds=<n>", handle: HandlerWrapper(http.HandlerFunc(pprof.Trace))},
		OpsEndpoint{Path: "/ops/debug/pprof/symbol", Usage: "program counters to function names", handle: HandlerWrapper(http.HandlerFunc(pprof.Symbol))},
		OpsEndpoint{Path: "/ops/debug/pprof/cmdline", Usage: "command line of the running binary", handle: HandlerWrapper(http.HandlerFunc(pprof.Cmdline))},
	)
	for _, profile := range profiles {
		endpoints = append(endpoints, OpsEndpoint{
			Path:   "/ops/debug/pprof/" + profile,
			Usage:  profile + " profile",
			handle: HandlerWrapper(pprof.Handler(profile)),
		})
	}
	return endpoints
}

// SetupOpsRoutes injects internal operations related endpoints
// and an index page listing them under /ops.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	endpoints := api.opsEndpoints()
	router.GET("/ops", m.ops(api.OpsIndex(endpoints)))
	for _, e := range endpoints {
		router.GET(e.Path, m.ops(e.handle))
	}
	return router
}
