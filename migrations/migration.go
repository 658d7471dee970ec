// Package migrations resolves and runs API payload migrations. A Registry
// holds the ordered versions of an API, each with the migrations introduced
// at that version. Per request, a Bond computes which migrations the caller
// has not seen yet and which of those apply to the request, and a Runner
// applies them upwards to the request and downwards to the response.
package migrations

// UpFunc migrates a request upwards. Returning a nil request keeps the
// current one, which is what transforms that mutate x.Request() in place
// usually do.
type UpFunc func(x *Exchange) (*Request, error)

// DownFunc migrates a response downwards. Returning a nil response keeps the
// current one.
type DownFunc func(x *Exchange) (*Response, error)

// Migration describes a change in the API request or response payloads. A
// migration is a plain value, shared by pointer across requests, and must not
// hold per-request state. Two migrations are the same migration only if they
// are the same pointer.
//
// Migrations without Up and Down are no-ops: they only flag a behaviour
// change that handlers can query through a Bond.
type Migration struct {
	// Name identifies the migration in logs, metrics and changelogs.
	Name string
	// Pattern is matched against the request path by the registry Matcher.
	Pattern string
	// Description is not used by the engine, only by changelogs.
	Description string
	// AppliesTo, when set, replaces the pattern check.
	AppliesTo func(req *Request) bool
	Up        UpFunc
	Down      DownFunc
}

// String returns the migration name.
func (m *Migration) String() string {
	return m.Name
}

// Exchange is what a transform sees: the request, and during the downwards
// phase the response too.
type Exchange struct {
	request  *Request
	response *Response
}

// Request returns the request being migrated. Downwards, this is always the
// original request of the client.
func (x *Exchange) Request() *Request {
	return x.request
}

// Response returns the response being migrated. It fails with
// ErrResponseInaccessible when the migration runs upwards.
func (x *Exchange) Response() (*Response, error) {
	if x.response == nil {
		return nil, ErrResponseInaccessible
	}
	return x.response, nil
}

// up runs the upwards transform. A nil result keeps req.
func (m *Migration) up(req *Request) (*Request, error) {
	if m.Up == nil {
		return req, nil
	}
	result, err := m.Up(&Exchange{request: req})
	if err != nil {
		return nil, &TransformError{Migration: m.Name, Direction: Upwards, Err: err}
	}
	if result == nil {
		return req, nil
	}
	return result, nil
}

// down runs the downwards transform. A nil result keeps resp.
func (m *Migration) down(req *Request, resp *Response) (*Response, error) {
	if m.Down == nil {
		return resp, nil
	}
	result, err := m.Down(&Exchange{request: req, response: resp})
	if err != nil {
		return nil, &TransformError{Migration: m.Name, Direction: Downwards, Err: err}
	}
	if result == nil {
		return resp, nil
	}
	return result, nil
}
