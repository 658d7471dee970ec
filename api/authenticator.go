package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/errors"
)

// authenticator is a middleware that rejects requests without a valid JWT
// token. If successful, it decodes the client identifier from the userId
// claim, adds it to the request context and passes it to the next handler.
func (a *API) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			errors.ErrUnauthorized.Write(w)
			return
		}
		if token == nil || jwt.Validate(token, jwt.WithRequiredClaim("userId")) != nil {
			errors.ErrUnauthorized.Withf("userId claim not found in JWT token").Write(w)
			return
		}
		clientID, ok := claims["userId"].(string)
		if !ok || clientID == "" {
			errors.ErrUnauthorized.Withf("invalid userId claim").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), apicommon.ClientIDMetadataKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
