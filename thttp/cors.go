package thttp

import (
	"net/http"

	"github.com/gorilla/handlers"
)

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPut,
		http.MethodPost,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsExposedHeaders = []string{
		"Content-Length",
		"Content-Type",
	}
)

// CORS is a middleware that allows cross-origin requests from any origin to
// the methods the example routers serve.
//
// It answers preflight OPTIONS requests itself, so it's opt-in (--cors):
// without it every OPTIONS request reaches the router fallback.
var CORS = handlers.CORS(
	handlers.AllowedMethods(corsMethods),
	handlers.ExposedHeaders(corsExposedHeaders),
	handlers.AllowedOrigins([]string{"*"}),
)
