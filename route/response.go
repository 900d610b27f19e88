package route

import "net/http"

// Field is a single response header
type Field struct {
	Name  string
	Value string
}

// Response is a complete response produced by a Handler
type Response struct {
	Status int     // 0 means http.StatusOK
	Header []Field // written in order; must include Content-Type
	Body   []byte
}

// Handler produces the response for a request. It receives the request-target
// as sent by the client (path and query).
type Handler func(uri string) Response

// StatusCode returns the effective status code
func (r Response) StatusCode() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

// Get returns the first value of the named header, compared
// case-insensitively, or "" if there is none
func (r Response) Get(name string) string {
	name = http.CanonicalHeaderKey(name)
	for _, f := range r.Header {
		if http.CanonicalHeaderKey(f.Name) == name {
			return f.Value
		}
	}
	return ""
}

// Write sends the response
func (r Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for _, f := range r.Header {
		h.Add(f.Name, f.Value)
	}
	w.WriteHeader(r.StatusCode())
	_, err := w.Write(r.Body)
	return err
}

// Text returns a 200 response with the given content type and body
func Text(contentType, body string) Response {
	return Response{
		Status: http.StatusOK,
		Header: []Field{{Name: "Content-Type", Value: contentType}},
		Body:   []byte(body),
	}
}

// NotFound is the default fallback handler: 404 naming the URI
func NotFound(uri string) Response {
	return Response{
		Status: http.StatusNotFound,
		Header: []Field{{Name: "Content-Type", Value: "text/plain"}},
		Body:   []byte("No route " + uri),
	}
}
