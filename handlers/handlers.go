// Package handlers contains the route handlers of the example programs and
// the route tables that put them together.
package handlers

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/ridge/hellohttp/route"
	"github.com/ridge/must/v2"
	"golang.org/x/exp/slices"
)

// Content types
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePNG  = "image/png"
)

//go:embed hello.html
var helloHTML []byte

// DemoPNGBase64 is a 1x1 transparent PNG served at /demo.png
const DemoPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mPk+89QDwADvgGOSHzRgAAAAABJRU5ErkJggg=="

// HelloWorld serves /
func HelloWorld(string) route.Response {
	return route.Text(ContentTypeText, "Hello, World!")
}

// DemoHTML serves /demo.html
func DemoHTML(string) route.Response {
	return route.Text(ContentTypeHTML, "<h1>Hello</h1>")
}

// HelloHTML serves /hello.html. The body is a copy of the embedded page.
func HelloHTML(string) route.Response {
	return route.Response{
		Status: http.StatusOK,
		Header: []route.Field{{Name: "Content-Type", Value: ContentTypeHTML}},
		Body:   slices.Clone(helloHTML),
	}
}

// DemoStatus serves /demo-status with an explicit status code
func DemoStatus(string) route.Response {
	return route.Response{
		Status: http.StatusOK,
		Header: []route.Field{{Name: "Content-Type", Value: ContentTypeText}},
		Body:   []byte("Everything is OK"),
	}
}

// DemoURI serves /demo-uri, echoing the request-target quoted
func DemoURI(uri string) route.Response {
	return route.Text(ContentTypeText, fmt.Sprintf("The URI is: %q", uri))
}

// DemoPNG serves /demo.png. The image is decoded on every request.
func DemoPNG(string) route.Response {
	return route.Response{
		Status: http.StatusOK,
		Header: []route.Field{{Name: "Content-Type", Value: ContentTypePNG}},
		Body:   must.OK1(base64.StdEncoding.DecodeString(DemoPNGBase64)),
	}
}

// Foo returns the handler answering "<METHOD> foo" for /foo
func Foo(method string) route.Handler {
	body := strings.ToUpper(method) + " foo"
	return func(string) route.Response {
		return route.Text("text/plain", body)
	}
}
