package api

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/api-migrations/apiversions"
	"github.com/vocdoni/api-migrations/versioning"
)

func TestClientVersion(t *testing.T) {
	c := qt.New(t)
	token := testToken(c, testClientID)

	// a post to check the served shape
	resp, _ := request(c, http.MethodPut, "/posts/pinned", "", "", map[string]any{
		"title":    "Hello",
		"author":   "a1",
		"category": "c1",
	})
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)

	c.Run("requires authentication", func(c *qt.C) {
		resp, body := requestJSON(c, http.MethodGet, clientVersionEndpoint, "", "", nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusUnauthorized)
		c.Assert(body["code"], qt.Equals, float64(40001))

		resp, _ = request(c, http.MethodGet, clientVersionEndpoint, "", "not-a-token", nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusUnauthorized)
	})

	c.Run("no pin", func(c *qt.C) {
		resp, body := requestJSON(c, http.MethodGet, clientVersionEndpoint, "", token, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusNotFound)
		c.Assert(body["code"], qt.Equals, float64(40402))
	})

	c.Run("invalid pins", func(c *qt.C) {
		resp, body := requestJSON(c, http.MethodPut, clientVersionEndpoint, "", token,
			map[string]any{"version": "2030-01-01"})
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(body["code"], qt.Equals, float64(40041))

		resp, body = requestJSON(c, http.MethodPut, clientVersionEndpoint, "", token,
			map[string]any{"version": "yesterday"})
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(body["code"], qt.Equals, float64(40004))
	})

	c.Run("pinned client is served in its version", func(c *qt.C) {
		resp, body := requestJSON(c, http.MethodPut, clientVersionEndpoint, "", token,
			map[string]any{"version": apiversions.V20171224})
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(body["clientId"], qt.Equals, testClientID)
		c.Assert(body["version"], qt.Equals, apiversions.V20171224)

		resp, post := requestJSON(c, http.MethodGet, "/posts/pinned", "", token, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(resp.Header.Get(versioning.DefaultHeader), qt.Equals, apiversions.V20171224)
		c.Assert(post["author_id"], qt.Equals, "a1")
		c.Assert(post["category_id"], qt.Equals, "c1")

		// a declared version wins over the pin
		resp, post = requestJSON(c, http.MethodGet, "/posts/pinned", apiversions.V20171226, token, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(post["author"], qt.Equals, "a1")

		// anonymous requests are not affected
		resp, post = requestJSON(c, http.MethodGet, "/posts/pinned", "", "", nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(post["category"], qt.Equals, "c1")
	})

	c.Run("unpin", func(c *qt.C) {
		resp, _ := request(c, http.MethodDelete, clientVersionEndpoint, "", token, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)

		resp, post := requestJSON(c, http.MethodGet, "/posts/pinned", "", token, nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(resp.Header.Get(versioning.DefaultHeader), qt.Equals, apiversions.V20171226)
		c.Assert(post["author"], qt.Equals, "a1")
	})
}
