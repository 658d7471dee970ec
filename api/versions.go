package api

import (
	"net/http"

	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/errors"
	"github.com/vocdoni/api-migrations/versioning"
)

// versionsHandler lists the versions of the API with the migrations each one
// introduced.
func (a *API) versionsHandler(w http.ResponseWriter, r *http.Request) {
	resp := apicommon.VersionsResponse{
		Latest:   a.registry.Latest().Number,
		Current:  versioning.Version(r.Context()),
		Versions: []apicommon.VersionInfo{},
	}
	for _, v := range a.registry.SortedVersions() {
		info := apicommon.VersionInfo{Version: v.Number, Migrations: []string{}}
		for _, m := range v.Migrations {
			info.Migrations = append(info.Migrations, m.Name)
		}
		resp.Versions = append(resp.Versions, info)
	}
	apicommon.HTTPWriteJSON(w, resp)
}

// changelogHandler renders the changelog in the format requested by the
// format query parameter, Markdown by default.
func (a *API) changelogHandler(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := a.changelog.Render(r.URL.Query().Get(apicommon.FormatParam))
	if err != nil {
		errors.ErrInvalidFormat.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
	}
}
