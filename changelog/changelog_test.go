package changelog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/api-migrations/apiversions"
)

func testChangelog(c *qt.C) *Changelog {
	registry, err := apiversions.New()
	c.Assert(err, qt.IsNil)
	return Build(registry)
}

func TestBuild(t *testing.T) {
	c := qt.New(t)
	cl := testChangelog(c)

	c.Assert(cl.Releases, qt.HasLen, 3)
	c.Assert(cl.Releases[0].Version, qt.Equals, apiversions.V20171226)
	c.Assert(cl.Releases[0].Latest, qt.IsTrue)
	c.Assert(cl.Releases[0].Changes, qt.DeepEquals, []Change{{
		Name:        apiversions.RenameCategoryIDToCategory.Name,
		Description: apiversions.RenameCategoryIDToCategory.Description,
		Pattern:     "/posts/:id",
	}})
	c.Assert(cl.Releases[1].Version, qt.Equals, apiversions.V20171225)
	c.Assert(cl.Releases[1].Latest, qt.IsFalse)
	c.Assert(cl.Releases[2].Version, qt.Equals, apiversions.V20171224)
	c.Assert(cl.Releases[2].Changes, qt.HasLen, 0)
}

func TestRender(t *testing.T) {
	c := qt.New(t)
	cl := testChangelog(c)

	md, contentType, err := cl.Render("")
	c.Assert(err, qt.IsNil)
	c.Assert(contentType, qt.Matches, "text/markdown.*")
	text := string(md)
	c.Assert(text, qt.Contains, "## 2017-12-26 (latest)")
	c.Assert(text, qt.Contains, "- **DropAuthorID** `/posts/:id`")
	c.Assert(text, qt.Contains, "No payload changes.")
	// newest first
	c.Assert(strings.Index(text, "2017-12-26") < strings.Index(text, "2017-12-24"), qt.IsTrue)

	html, contentType, err := cl.Render(FormatHTML)
	c.Assert(err, qt.IsNil)
	c.Assert(contentType, qt.Matches, "text/html.*")
	c.Assert(string(html), qt.Contains, "<h2>2017-12-25</h2>")
	c.Assert(string(html), qt.Contains, "<strong>DropAuthorID</strong>")

	data, contentType, err := cl.Render("JSON")
	c.Assert(err, qt.IsNil)
	c.Assert(contentType, qt.Equals, "application/json")
	decoded := &Changelog{}
	c.Assert(json.Unmarshal(data, decoded), qt.IsNil)
	c.Assert(decoded, qt.DeepEquals, cl)

	_, _, err = cl.Render("pdf")
	c.Assert(err, qt.ErrorIs, ErrUnknownFormat)
}

func TestPublish(t *testing.T) {
	c := qt.New(t)

	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     string
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		c.Check(err, qt.IsNil)
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			gotBody = string(body)
			contentType = r.Header.Get("Content-Type")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewPublisher(context.Background(), &PublisherConfig{})
	c.Assert(err, qt.ErrorMatches, "bucket is required")

	publisher, err := NewPublisher(context.Background(), &PublisherConfig{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "docs",
		AccessKey: "key",
		SecretKey: "secret",
		PathStyle: true,
	})
	c.Assert(err, qt.IsNil)

	cl := testChangelog(c)
	location, err := publisher.Publish(context.Background(), cl, "api/changelog.md", FormatMarkdown)
	c.Assert(err, qt.IsNil)
	c.Assert(location, qt.Contains, "/docs/api/changelog.md")

	mu.Lock()
	defer mu.Unlock()
	c.Assert(gotPath, qt.Equals, "/docs/api/changelog.md")
	c.Assert(gotBody, qt.Equals, string(cl.Markdown()))
	c.Assert(contentType, qt.Matches, "text/markdown.*")

	_, err = publisher.Publish(context.Background(), cl, "x", "pdf")
	c.Assert(err, qt.ErrorIs, ErrUnknownFormat)
}
