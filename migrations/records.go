package migrations

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// Request is the transport-agnostic view of an incoming API request that
// migrations read and rewrite. Params holds the merged query string and JSON
// body parameters.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Params map[string]any
}

// Response is the transport-agnostic view of an API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Param returns the value of the given parameter and whether it was present.
func (r *Request) Param(key string) (any, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// SetParam sets a request parameter, initializing the parameters map if needed.
func (r *Request) SetParam(key string, value any) {
	if r.Params == nil {
		r.Params = make(map[string]any)
	}
	r.Params[key] = value
}

// DeleteParam removes a parameter and returns its previous value, or nil.
func (r *Request) DeleteParam(key string) any {
	v, ok := r.Params[key]
	if !ok {
		return nil
	}
	delete(r.Params, key)
	return v
}

// RenameParam moves the value of the parameter from to the parameter to. It
// returns false if from was not present, leaving the request untouched.
func (r *Request) RenameParam(from, to string) bool {
	v, ok := r.Params[from]
	if !ok {
		return false
	}
	delete(r.Params, from)
	r.SetParam(to, v)
	return true
}

// Clone returns a deep copy of the request. Nested maps and slices in the
// parameters are copied too, so the clone can be mutated freely.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := &Request{
		Method: r.Method,
		Path:   r.Path,
		Header: r.Header.Clone(),
	}
	if r.Params != nil {
		c.Params = cloneValue(r.Params).(map[string]any)
	}
	return c
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("cannot decode response body: %w", err)
	}
	return nil
}

// EncodeJSON replaces the response body with the JSON encoding of v.
func (r *Response) EncodeJSON(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode response body: %w", err)
	}
	r.Body = body
	return nil
}

// Clone returns a copy of the response with its own header map and body.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	return &Response{
		Status: r.Status,
		Header: r.Header.Clone(),
		Body:   append([]byte(nil), r.Body...),
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := maps.Clone(t)
		for k, e := range m {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
