package handlers

import (
	"net/http"

	"github.com/ridge/hellohttp/route"
)

// Hello returns the smallest router: a greeting at / and the 404 fallback
func Hello() *route.Router {
	return route.New().
		Handle(http.MethodGet, "/", HelloWorld).
		SetFallback(route.NotFound).
		Build()
}

// Demo returns the router with every example route
func Demo() *route.Router {
	b := route.New().
		Handle(http.MethodGet, "/", HelloWorld).
		Handle(http.MethodGet, "/demo.html", DemoHTML).
		Handle(http.MethodGet, "/hello.html", HelloHTML).
		Handle(http.MethodGet, "/demo-status", DemoStatus).
		Handle(http.MethodGet, "/demo-uri", DemoURI).
		Handle(http.MethodGet, "/demo.png", DemoPNG)
	for _, method := range route.Methods {
		b.Handle(method, "/foo", Foo(method))
	}
	return b.SetFallback(route.NotFound).Build()
}
