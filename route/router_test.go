package route

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echo(body string) Handler {
	return func(string) Response {
		return Text("text/plain", body)
	}
}

func testRouter() *Router {
	return New().
		Handle(http.MethodGet, "/", echo("root")).
		Handle(http.MethodGet, "/foo", echo("GET foo")).
		Handle(http.MethodPost, "/foo", echo("POST foo")).
		Handle(http.MethodGet, "/demo.png", echo("png")).
		Build()
}

func dispatch(r *Router, method, target string) Response {
	return r.Dispatch(httptest.NewRequest(method, target, nil))
}

func TestDispatch(t *testing.T) {
	r := testRouter()

	resp := dispatch(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "root", string(resp.Body))

	assert.Equal(t, "GET foo", string(dispatch(r, http.MethodGet, "/foo").Body))
	assert.Equal(t, "POST foo", string(dispatch(r, http.MethodPost, "/foo").Body))
	assert.Equal(t, "png", string(dispatch(r, http.MethodGet, "/demo.png").Body))
}

func TestDispatchMethodCaseInsensitive(t *testing.T) {
	r := testRouter()
	assert.Equal(t, "POST foo", string(dispatch(r, "post", "/foo").Body))
	assert.Equal(t, "GET foo", string(dispatch(r, "Get", "/foo").Body))
}

func TestDispatchFallback(t *testing.T) {
	r := testRouter()

	for _, tc := range []struct {
		method string
		target string
	}{
		{http.MethodGet, "/does-not-exist"},
		{http.MethodGet, "/foo/"},               // trailing slash is a different path
		{http.MethodGet, "/FOO"},                // paths are case-sensitive
		{http.MethodGet, "/x/../foo"},           // no path cleaning
		{http.MethodGet, "/demoXpng"},           // dots are literal
		{http.MethodDelete, "/foo"},             // known path, unknown method: 404, not 405
		{http.MethodHead, "/foo"},               // no implicit HEAD
		{http.MethodGet, "/does-not-exist?q=1"}, // query is part of the URI
	} {
		resp := dispatch(r, tc.method, tc.target)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode(), "%s %s", tc.method, tc.target)
		assert.Equal(t, "text/plain", resp.Get("Content-Type"))
		uri := httptest.NewRequest(tc.method, tc.target, nil).RequestURI
		assert.Equal(t, "No route "+uri, string(resp.Body), "%s %s", tc.method, tc.target)
	}
}

func TestSetFallback(t *testing.T) {
	r := New().
		Handle(http.MethodGet, "/", echo("root")).
		SetFallback(func(uri string) Response {
			return Response{Status: http.StatusGone, Header: []Field{{Name: "Content-Type", Value: "text/plain"}}, Body: []byte("gone " + uri)}
		}).
		Build()

	resp := dispatch(r, http.MethodGet, "/old")
	assert.Equal(t, http.StatusGone, resp.StatusCode())
	assert.Equal(t, "gone /old", string(resp.Body))
}

func TestAddDuplicate(t *testing.T) {
	b := New()
	require.NoError(t, b.Add(http.MethodGet, "/foo", echo("1")))
	require.NoError(t, b.Add(http.MethodPut, "/foo", echo("2")))
	err := b.Add("get", "/foo", echo("3"))
	require.ErrorIs(t, err, ErrDuplicateRoute)
	require.EqualError(t, err, "duplicate route: GET /foo")
	require.Panics(t, func() { b.Handle(http.MethodGet, "/foo", echo("4")) })
}

func TestAddInvalid(t *testing.T) {
	for _, tc := range []struct {
		method string
		path   string
	}{
		{"OPTIONS", "/foo"},
		{http.MethodGet, "foo"},
		{http.MethodGet, ""},
		{http.MethodGet, "/foo?x=1"},
		{http.MethodGet, "/foo#frag"},
		{http.MethodGet, "/{id}"},
	} {
		err := New().Add(tc.method, tc.path, echo(""))
		var invalid ErrInvalidRoute
		require.ErrorAs(t, err, &invalid, "%s %s", tc.method, tc.path)
	}
}

func TestRoutes(t *testing.T) {
	r := testRouter()
	require.Equal(t, []Key{
		{Method: http.MethodGet, Path: "/"},
		{Method: http.MethodGet, Path: "/demo.png"},
		{Method: http.MethodGet, Path: "/foo"},
		{Method: http.MethodPost, Path: "/foo"},
	}, r.Routes())

	// the returned slice is a copy
	r.Routes()[0].Path = "/changed"
	require.Equal(t, "/", r.Routes()[0].Path)
}

func TestServeHTTP(t *testing.T) {
	r := testRouter()

	res := httptestDo(r, http.MethodPost, "/foo")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/plain", res.Header.Get("Content-Type"))
	assert.Equal(t, "POST foo", readBody(t, res))

	res = httptestDo(r, "patch", "/foo")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "No route /foo", readBody(t, res))

	res = httptestDo(r, http.MethodGet, "//foo")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "No route //foo", readBody(t, res))
}

func TestConcurrentDispatch(t *testing.T) {
	r := testRouter()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "GET foo", string(dispatch(r, http.MethodGet, "/foo").Body))
			}
		}()
	}
	wg.Wait()
}

func TestRequestURI(t *testing.T) {
	assert.Equal(t, "/a?b=c", RequestURI(httptest.NewRequest(http.MethodGet, "/a?b=c", nil)))

	clientReq, err := http.NewRequest(http.MethodGet, "http://localhost:3000/a%20b?b=c", nil)
	require.NoError(t, err)
	assert.Equal(t, "/a%20b?b=c", RequestURI(clientReq))
}

func httptestDo(h http.Handler, method, target string) *http.Response {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w.Result()
}

func readBody(t *testing.T, res *http.Response) string {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}
