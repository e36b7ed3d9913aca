package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets the status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta attaches metadata to the envelope.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v as the data of a 200 response.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err as an error envelope. HTTPError values keep their
// status and key; anything else becomes a 500 without leaking its text.
func JSONError(err error, opts ...JSONOption) Response {
	httpErr := AsHTTPError(err)
	r := &jsonResponse{
		status: httpErr.Code,
		body: JSONResponse{Error: &ErrorDetail{
			Code:    httpErr.Key,
			Message: httpErr.Message,
		}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty is a 204 No Content response.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

type redirectResponse struct {
	url    string
	status int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, r.status)
	return nil
}

// Redirect is a 303 See Other response.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusSeeOther}
}
