package api

import (
	"net/http"

	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/db"
	"github.com/vocdoni/api-migrations/errors"
	"github.com/vocdoni/api-migrations/validator"
	"go.vocdoni.io/dvote/log"
)

// clientVersionHandler returns the API version pinned by the authenticated
// client.
func (a *API) clientVersionHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := apicommon.ClientIDFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	pin, err := a.db.ClientVersion(clientID)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrClientVersionNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.ClientVersionResponse{
		ClientID:  pin.ClientID,
		Version:   pin.Version,
		UpdatedAt: pin.UpdatedAt,
	})
}

// setClientVersionHandler pins the API version of the authenticated client.
// Requests of the client without an explicit version are served in the
// pinned one from then on. Only registered versions can be pinned.
func (a *API) setClientVersionHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := apicommon.ClientIDFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	model, ok := validator.GetValidatedModel(r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	req := model.(*apicommon.ClientVersionRequest)
	version, ok := a.registry.Lookup(req.Version)
	if !ok {
		errors.ErrUnknownAPIVersion.Withf("version %s is not registered", req.Version).Write(w)
		return
	}
	if err := a.db.SetClientVersion(clientID, version.Number); err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	a.clients.Forget(clientID)
	log.Infow("client version pinned", "client", clientID, "version", version.Number)
	a.clientVersionHandler(w, r)
}

// deleteClientVersionHandler removes the pin of the authenticated client, so
// its requests are served in the latest version again.
func (a *API) deleteClientVersionHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := apicommon.ClientIDFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	if err := a.db.DelClientVersion(clientID); err != nil {
		errors.ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	a.clients.Forget(clientID)
	apicommon.HTTPWriteOK(w)
}
