package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/db"
	"github.com/vocdoni/api-migrations/errors"
	"github.com/vocdoni/api-migrations/validator"
)

// postHandler returns the post of the id URL parameter.
func (a *API) postHandler(w http.ResponseWriter, r *http.Request) {
	post, err := a.db.Post(chi.URLParam(r, "id"))
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrPostNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, apicommon.PostFromDB(post))
}

// setPostHandler creates or replaces the post of the id URL parameter with
// the validated request body, and returns the stored post.
func (a *API) setPostHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		errors.ErrMalformedURLParam.With("missing post id").Write(w)
		return
	}
	model, ok := validator.GetValidatedModel(r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	req := model.(*apicommon.PostRequest)
	post := &db.Post{
		ID:       id,
		Title:    req.Title,
		Body:     req.Body,
		Author:   req.Author,
		Category: req.Category,
	}
	if err := a.db.SetPost(post); err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, apicommon.PostFromDB(post))
}

// deletePostHandler deletes the post of the id URL parameter.
func (a *API) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.db.DelPost(chi.URLParam(r, "id")); err != nil {
		if err == db.ErrNotFound {
			errors.ErrPostNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}
