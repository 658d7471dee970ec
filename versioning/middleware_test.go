package versioning

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/api-migrations/apiversions"
	"github.com/vocdoni/api-migrations/migrations"
)

// echoHandler answers with the JSON body it received, plus the query string
// parameters under "query".
func echoHandler(c *qt.C) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if r.Body != nil {
			raw, err := io.ReadAll(r.Body)
			c.Check(err, qt.IsNil)
			if len(raw) > 0 {
				c.Check(json.Unmarshal(raw, &body), qt.IsNil)
			}
		}
		if q := r.URL.Query(); len(q) > 0 {
			query := map[string]string{}
			for k := range q {
				query[k] = q.Get(k)
			}
			body["query"] = query
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		c.Check(json.NewEncoder(w).Encode(body), qt.IsNil)
	})
}

func serve(c *qt.C, handler http.Handler, method, target, version, body string) (*httptest.ResponseRecorder, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if version != "" {
		req.Header.Set(DefaultHeader, version)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		c.Assert(json.Unmarshal(rec.Body.Bytes(), &decoded), qt.IsNil, qt.Commentf("body: %s", rec.Body.String()))
	}
	return rec, decoded
}

func newRegistry(c *qt.C) *migrations.Registry {
	registry, err := apiversions.New()
	c.Assert(err, qt.IsNil)
	return registry
}

func TestMiddlewareMigratesOldClient(t *testing.T) {
	c := qt.New(t)
	handler := New(Config{Registry: newRegistry(c)})(echoHandler(c))

	c.Run("json body", func(c *qt.C) {
		rec, body := serve(c, handler, http.MethodPut, "/posts/1", apiversions.V20171224,
			`{"title":"hello","author_id":"a1","category_id":"c1","views":12}`)
		c.Assert(rec.Code, qt.Equals, http.StatusCreated)
		c.Assert(rec.Header().Get(DefaultHeader), qt.Equals, apiversions.V20171224)
		c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "application/json")
		// the handler saw author and category, the client gets its own names back
		c.Assert(body, qt.DeepEquals, map[string]any{
			"title":       "hello",
			"author_id":   "a1",
			"category_id": "c1",
			"views":       float64(12),
		})
	})

	c.Run("query string", func(c *qt.C) {
		var seen string
		h := New(Config{Registry: newRegistry(c)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = r.URL.RawQuery
		}))
		rec, _ := serve(c, h, http.MethodGet, "/posts/1?author_id=a1&category_id=c1", apiversions.V20171225, "")
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		// 2017-12-25 already renamed author_id, only category_id is migrated
		c.Assert(seen, qt.Equals, "author_id=a1&category=c1")
	})
}

func TestMiddlewareKeyInQueryAndBody(t *testing.T) {
	c := qt.New(t)
	var query string
	body := map[string]any{}
	handler := New(Config{Registry: newRegistry(c)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		c.Check(json.NewDecoder(r.Body).Decode(&body), qt.IsNil)
	}))
	rec, _ := serve(c, handler, http.MethodPut, "/posts/1?id=q&author_id=a0", apiversions.V20171224,
		`{"id":"b","author_id":"a1"}`)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	// the body wins for the handler, the query string keeps what the client sent
	c.Assert(query, qt.Equals, "id=q")
	c.Assert(body, qt.DeepEquals, map[string]any{"id": "b", "author": "a1"})
}

func TestMiddlewareFormBody(t *testing.T) {
	c := qt.New(t)
	var form url.Values
	var length int64
	handler := New(Config{Registry: newRegistry(c)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		c.Check(err, qt.IsNil)
		length = r.ContentLength
		form, err = url.ParseQuery(string(raw))
		c.Check(err, qt.IsNil)
	}))

	c.Run("migrated", func(c *qt.C) {
		req := httptest.NewRequest(http.MethodPut, "/posts/1",
			strings.NewReader("author_id=a1&title=t&tags=x&tags=y"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(DefaultHeader, apiversions.V20171224)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		c.Assert(form, qt.DeepEquals, url.Values{
			"author": {"a1"},
			"title":  {"t"},
			"tags":   {"x", "y"},
		})
		c.Assert(length, qt.Equals, int64(len(form.Encode())))
	})

	c.Run("malformed", func(c *qt.C) {
		req := httptest.NewRequest(http.MethodPut, "/posts/1", strings.NewReader("author_id=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(DefaultHeader, apiversions.V20171224)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	})
}

func TestMiddlewareLatestClientUntouched(t *testing.T) {
	c := qt.New(t)
	handler := New(Config{Registry: newRegistry(c)})(echoHandler(c))

	for _, version := range []string{"", apiversions.V20171226} {
		rec, body := serve(c, handler, http.MethodPut, "/posts/1", version,
			`{"title":"hello","author":"a1","category":"c1"}`)
		c.Assert(rec.Code, qt.Equals, http.StatusCreated)
		c.Assert(rec.Header().Get(DefaultHeader), qt.Equals, apiversions.V20171226)
		c.Assert(body, qt.DeepEquals, map[string]any{
			"title":    "hello",
			"author":   "a1",
			"category": "c1",
		})
	}
}

func TestMiddlewareOtherPathsUntouched(t *testing.T) {
	c := qt.New(t)
	handler := New(Config{Registry: newRegistry(c)})(echoHandler(c))

	rec, body := serve(c, handler, http.MethodPost, "/comments", apiversions.V20171224,
		`{"author_id":"a1"}`)
	c.Assert(rec.Code, qt.Equals, http.StatusCreated)
	c.Assert(rec.Header().Get(DefaultHeader), qt.Equals, apiversions.V20171224)
	c.Assert(body, qt.DeepEquals, map[string]any{"author_id": "a1"})
}

func TestMiddlewareUnknownVersion(t *testing.T) {
	c := qt.New(t)

	c.Run("served in latest", func(c *qt.C) {
		handler := New(Config{Registry: newRegistry(c)})(echoHandler(c))
		for _, version := range []string{"2030-01-01", "not a version"} {
			rec, body := serve(c, handler, http.MethodPut, "/posts/1", version, `{"author":"a1"}`)
			c.Assert(rec.Code, qt.Equals, http.StatusCreated)
			c.Assert(rec.Header().Get(DefaultHeader), qt.Equals, apiversions.V20171226)
			c.Assert(body, qt.DeepEquals, map[string]any{"author": "a1"})
		}
	})

	c.Run("strict", func(c *qt.C) {
		handler := New(Config{Registry: newRegistry(c), Strict: true})(echoHandler(c))
		rec, body := serve(c, handler, http.MethodGet, "/posts/1", "2030-01-01", "")
		c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
		c.Assert(body["code"], qt.Equals, float64(40041))

		rec, body = serve(c, handler, http.MethodGet, "/posts/1", "not a version", "")
		c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
		c.Assert(body["code"], qt.Equals, float64(40040))
	})
}

func TestMiddlewareMigrationFailure(t *testing.T) {
	c := qt.New(t)

	failing := func(up bool) *migrations.Registry {
		m := &migrations.Migration{Name: "Failing", Pattern: "/posts/:id"}
		if up {
			m.Up = func(*migrations.Exchange) (*migrations.Request, error) {
				return nil, fmt.Errorf("boom")
			}
		} else {
			m.Down = func(*migrations.Exchange) (*migrations.Response, error) {
				return nil, fmt.Errorf("boom")
			}
		}
		r := migrations.NewRegistry()
		r.MustAddVersion("1.0")
		r.MustAddVersion("2.0", m)
		r.Freeze()
		return r
	}

	for _, up := range []bool{true, false} {
		called := false
		handler := New(Config{Registry: failing(up)})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			_, _ = w.Write([]byte(`{"secret":"not for the client"}`))
		}))
		rec, body := serve(c, handler, http.MethodGet, "/posts/1", "1.0", "")
		c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
		c.Assert(body["code"], qt.Equals, float64(50003))
		c.Assert(called, qt.Equals, !up)
	}
}

func TestMiddlewareMalformedBody(t *testing.T) {
	c := qt.New(t)
	handler := New(Config{Registry: newRegistry(c)})(echoHandler(c))
	rec, body := serve(c, handler, http.MethodPut, "/posts/1", apiversions.V20171224, `{"author_id":`)
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(body["code"], qt.Equals, float64(40004))
}

func TestMiddlewareHooks(t *testing.T) {
	c := qt.New(t)

	type state struct {
		version  string
		pending  bool
		rolled   bool
		applying bool
		count    int
	}
	var got state
	handler := New(Config{Registry: newRegistry(c)})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		got = state{
			version:  Version(ctx),
			pending:  IsMigrationPending(ctx, apiversions.DropAuthorID),
			rolled:   IsMigrationRolled(ctx, apiversions.DropAuthorID),
			applying: IsMigrationApplying(ctx, apiversions.DropAuthorID),
			count:    len(ApplyingMigrations(ctx)),
		}
	}))

	serve(c, handler, http.MethodGet, "/posts/1", apiversions.V20171224, "")
	c.Assert(got, qt.Equals, state{
		version: apiversions.V20171224, pending: true, applying: true, count: 2,
	})

	serve(c, handler, http.MethodGet, "/versions", apiversions.V20171224, "")
	c.Assert(got, qt.Equals, state{
		version: apiversions.V20171224, pending: true,
	})

	serve(c, handler, http.MethodGet, "/posts/1", apiversions.V20171225, "")
	c.Assert(got, qt.Equals, state{
		version: apiversions.V20171225, rolled: true, count: 1,
	})
}

func TestHooksOutsideMiddleware(t *testing.T) {
	c := qt.New(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	_, ok := BondFromContext(ctx)
	c.Assert(ok, qt.IsFalse)
	c.Assert(Version(ctx), qt.Equals, "")
	c.Assert(PendingMigrations(ctx), qt.IsNil)
	c.Assert(RolledMigrations(ctx), qt.IsNil)
	c.Assert(IsMigrationPending(ctx, apiversions.DropAuthorID), qt.IsFalse)
	c.Assert(IsMigrationRolled(ctx, apiversions.DropAuthorID), qt.IsTrue)
}
