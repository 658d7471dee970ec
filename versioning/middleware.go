// Package versioning hosts the migration engine in an HTTP service. Its
// middleware resolves the API version of each request, migrates the request
// up to the latest version before the handler runs, and migrates the
// response back down to the version of the client.
package versioning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vocdoni/api-migrations/errors"
	"github.com/vocdoni/api-migrations/migrations"
	"go.vocdoni.io/dvote/log"
)

// Config configures the versioning middleware.
type Config struct {
	// Registry holds the versions of the API. It must be frozen before
	// serving traffic.
	Registry *migrations.Registry
	// Resolver finds the version declared by the client. Defaults to
	// HeaderResolver(DefaultHeader).
	Resolver Resolver
	// Header is the response header that reports the served version.
	// Defaults to DefaultHeader.
	Header string
	// Strict rejects invalid and unknown versions instead of serving the
	// latest one.
	Strict bool
}

// paramSource tells where a request parameter came from, so it can be
// written back there after the request is migrated. A parameter sent in
// both the query string and the body carries both flags.
type paramSource int

const (
	fromQuery paramSource = 1 << iota
	fromBody
)

// bodyKind is the encoding of a request body whose fields are parameters.
type bodyKind int

const (
	noBody bodyKind = iota
	jsonBody
	formBody
)

// origin records how the parameters of a request were sent.
type origin struct {
	sources map[string]paramSource
	query   url.Values
	body    bodyKind
}

// New returns the versioning middleware.
func New(conf Config) func(http.Handler) http.Handler {
	if conf.Registry == nil {
		panic("versioning: registry is required")
	}
	if conf.Resolver == nil {
		conf.Resolver = HeaderResolver(DefaultHeader)
	}
	if conf.Header == "" {
		conf.Header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			version, ok := conf.resolve(w, r)
			if !ok {
				return
			}
			request, from, err := buildRequest(r)
			if err != nil {
				errors.ErrMalformedBody.WithErr(err).Write(w)
				return
			}
			bond, err := migrations.NewBond(conf.Registry, request, version)
			if err != nil {
				errors.ErrVersionResolutionFailed.WithErr(err).Write(w)
				return
			}
			w.Header().Set(conf.Header, version)
			r = r.WithContext(WithBond(r.Context(), bond))
			// nothing to migrate, serve the request as is
			if len(bond.ApplyingMigrations()) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			runner := migrations.NewRunner(bond)
			migrated, err := runner.RunUpwards()
			if err != nil {
				log.Warnw("cannot migrate request", "path", r.URL.Path, "version", version, "error", err)
				errors.ErrMigrationFailed.WithErr(err).Write(w)
				return
			}
			if err := rewriteRequest(r, migrated, from); err != nil {
				errors.ErrMigrationFailed.WithErr(err).Write(w)
				return
			}
			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)
			response, err := runner.RunDownwards(buf.response())
			if err != nil {
				log.Warnw("cannot migrate response", "path", r.URL.Path, "version", version, "error", err)
				errors.ErrMigrationFailed.WithErr(err).Write(w)
				return
			}
			writeResponse(w, response)
		})
	}
}

// resolve finds the registered version the request is served in. It writes
// the error response and returns false if there is none.
func (conf Config) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, err := conf.Resolver.ResolveVersion(r)
	if err != nil {
		errors.ErrVersionResolutionFailed.WithErr(err).Write(w)
		return "", false
	}
	if conf.Strict && token != "" {
		if _, err := migrations.ParseNumber(token); err != nil {
			errors.ErrInvalidAPIVersion.WithErr(err).Write(w)
			return "", false
		}
		if _, ok := conf.Registry.Lookup(token); !ok {
			errors.ErrUnknownAPIVersion.Withf("version %s is not registered", token).Write(w)
			return "", false
		}
	}
	version, err := conf.Registry.Resolve(token)
	if err != nil {
		errors.ErrVersionResolutionFailed.WithErr(err).Write(w)
		return "", false
	}
	if token != "" && version != token {
		log.Debugw("serving latest API version", "requested", token, "served", version)
	}
	return version, true
}

// buildRequest turns the HTTP request into the migrations view of it. The
// query string and the fields of a JSON object or form encoded body are
// merged into the parameters, the body winning on conflict. The body of r is
// consumed and restored.
func buildRequest(r *http.Request) (*migrations.Request, *origin, error) {
	request := &migrations.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Params: map[string]any{},
	}
	from := &origin{
		sources: map[string]paramSource{},
		query:   r.URL.Query(),
	}
	for key, values := range from.query {
		from.sources[key] |= fromQuery
		request.Params[key] = paramValue(values)
	}
	if r.Body == nil {
		return request, from, nil
	}
	kind := bodyKindOf(r.Header.Get("Content-Type"))
	if kind == noBody {
		return request, from, nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return request, from, nil
	}
	fields := map[string]any{}
	switch kind {
	case formBody:
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("cannot parse form body: %w", err)
		}
		for key, v := range values {
			fields[key] = paramValue(v)
		}
	case jsonBody:
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&fields); err != nil {
			// not a JSON object, migrations only see the query string
			if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
				return nil, nil, err
			}
			return request, from, nil
		}
	}
	from.body = kind
	for key, value := range fields {
		from.sources[key] |= fromBody
		request.Params[key] = value
	}
	return request, from, nil
}

// rewriteRequest writes the migrated parameters back into r. Parameters keep
// their source; new ones go to the body if the request had one, or to the
// query string otherwise. A query value shadowed by a body field is kept as
// the client sent it.
func rewriteRequest(r *http.Request, migrated *migrations.Request, from *origin) error {
	query := url.Values{}
	body := map[string]any{}
	for key, value := range migrated.Params {
		source, known := from.sources[key]
		if !known {
			source = fromQuery
			if from.body != noBody {
				source = fromBody
			}
		}
		if source&fromBody != 0 {
			body[key] = value
		}
		if source&fromQuery == 0 {
			continue
		}
		if source&fromBody != 0 {
			query[key] = from.query[key]
			continue
		}
		for _, v := range queryValues(value) {
			query.Add(key, v)
		}
	}
	r.URL.RawQuery = query.Encode()
	if migrated.Header != nil {
		r.Header = migrated.Header
	}
	var raw []byte
	switch from.body {
	case noBody:
		return nil
	case formBody:
		form := url.Values{}
		for key, value := range body {
			form[key] = queryValues(value)
		}
		raw = []byte(form.Encode())
	case jsonBody:
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return fmt.Errorf("cannot encode migrated request body: %w", err)
		}
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	r.ContentLength = int64(len(raw))
	r.Header.Set("Content-Length", strconv.Itoa(len(raw)))
	return nil
}

// paramValue is a single value as a string, several as a list.
func paramValue(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}

func queryValues(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{""}
	case string:
		return []string{v}
	case []any:
		values := make([]string, 0, len(v))
		for _, e := range v {
			values = append(values, queryValues(e)...)
		}
		return values
	case []string:
		return v
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return []string{fmt.Sprint(v)}
		}
		return []string{string(raw)}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func bodyKindOf(contentType string) bodyKind {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return jsonBody
	case mediaType == "application/x-www-form-urlencoded":
		return formBody
	default:
		return noBody
	}
}

// responseBuffer holds back everything the handler writes, so the response
// can be migrated before it reaches the client.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (rb *responseBuffer) Header() http.Header {
	return rb.header
}

func (rb *responseBuffer) WriteHeader(status int) {
	if rb.status == 0 {
		rb.status = status
	}
}

func (rb *responseBuffer) Write(p []byte) (int, error) {
	if rb.status == 0 {
		rb.status = http.StatusOK
	}
	return rb.body.Write(p)
}

func (rb *responseBuffer) response() *migrations.Response {
	status := rb.status
	if status == 0 {
		status = http.StatusOK
	}
	return &migrations.Response{
		Status: status,
		Header: rb.header,
		Body:   rb.body.Bytes(),
	}
}

func writeResponse(w http.ResponseWriter, response *migrations.Response) {
	maps.Copy(w.Header(), response.Header)
	// the body length may have changed
	w.Header().Del("Content-Length")
	w.WriteHeader(response.Status)
	if len(response.Body) == 0 {
		return
	}
	if _, err := w.Write(response.Body); err != nil {
		log.Warnw("failed to write migrated response", "error", err)
	}
}
