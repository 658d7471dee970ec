package apicommon

import (
	"context"
	"encoding/json"
	"net/http"

	"go.vocdoni.io/dvote/log"
)

// ClientIDFromContext retrieves the client id from the context provided,
// expected to be the context of a request handled by the authenticator
// middleware.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ClientIDMetadataKey).(string)
	return clientID, ok && clientID != ""
}

// HTTPWriteJSON helper function allows to write a JSON response.
func HTTPWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// HTTPWriteOK helper function allows to write an OK response.
func HTTPWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
