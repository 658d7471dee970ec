package api

import (
	"encoding/json"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/apiversions"
	"github.com/vocdoni/api-migrations/versioning"
)

func TestVersions(t *testing.T) {
	c := qt.New(t)

	resp, body := request(c, http.MethodGet, versionsEndpoint, apiversions.V20171225, "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.Header.Get(versioning.DefaultHeader), qt.Equals, apiversions.V20171225)
	versions := apicommon.VersionsResponse{}
	c.Assert(json.Unmarshal(body, &versions), qt.IsNil)
	c.Assert(versions, qt.DeepEquals, apicommon.VersionsResponse{
		Latest:  apiversions.V20171226,
		Current: apiversions.V20171225,
		Versions: []apicommon.VersionInfo{
			{Version: apiversions.V20171224, Migrations: []string{}},
			{Version: apiversions.V20171225, Migrations: []string{apiversions.DropAuthorID.Name}},
			{Version: apiversions.V20171226, Migrations: []string{apiversions.RenameCategoryIDToCategory.Name}},
		},
	})

	// no version declared, served in the latest one
	resp, body = request(c, http.MethodGet, versionsEndpoint, "", "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(json.Unmarshal(body, &versions), qt.IsNil)
	c.Assert(versions.Current, qt.Equals, apiversions.V20171226)
}

func TestChangelog(t *testing.T) {
	c := qt.New(t)

	resp, body := request(c, http.MethodGet, changelogEndpoint, "", "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.Header.Get("Content-Type"), qt.Matches, "text/markdown.*")
	c.Assert(string(body), qt.Contains, "## 2017-12-26 (latest)")

	resp, body = request(c, http.MethodGet, changelogEndpoint+"?format=html", "", "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(resp.Header.Get("Content-Type"), qt.Matches, "text/html.*")
	c.Assert(string(body), qt.Contains, "<h1>API changelog</h1>")

	resp, decoded := requestJSON(c, http.MethodGet, changelogEndpoint+"?format=json", "", "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
	c.Assert(decoded["versions"], qt.HasLen, 3)

	resp, decoded = requestJSON(c, http.MethodGet, changelogEndpoint+"?format=pdf", "", "", nil)
	c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
	c.Assert(decoded["code"], qt.Equals, float64(40042))
}
