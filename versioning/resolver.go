package versioning

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vocdoni/api-migrations/db"
	"go.vocdoni.io/dvote/log"
)

// DefaultHeader is the request header that carries the API version declared
// by the client. The middleware also reports the served version in it.
const DefaultHeader = "X-Api-Version"

// clientIDClaim is the JWT claim that identifies the client.
const clientIDClaim = "userId"

// Resolver extracts the API version declared by the client of a request. An
// empty version means the client did not declare one.
type Resolver interface {
	ResolveVersion(r *http.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// ResolveVersion calls f(r).
func (f ResolverFunc) ResolveVersion(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver reads the version from the given request header, or from
// DefaultHeader if name is empty.
func HeaderResolver(name string) Resolver {
	if name == "" {
		name = DefaultHeader
	}
	return ResolverFunc(func(r *http.Request) (string, error) {
		return strings.TrimSpace(r.Header.Get(name)), nil
	})
}

// QueryResolver reads the version from the given query string parameter.
func QueryResolver(param string) Resolver {
	return ResolverFunc(func(r *http.Request) (string, error) {
		return strings.TrimSpace(r.URL.Query().Get(param)), nil
	})
}

// ChainResolver asks each resolver in order and returns the first non-empty
// version. The first error stops the chain.
func ChainResolver(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(r *http.Request) (string, error) {
		for _, res := range resolvers {
			version, err := res.ResolveVersion(r)
			if err != nil {
				return "", err
			}
			if version != "" {
				return version, nil
			}
		}
		return "", nil
	})
}

// ClientStore is the storage of the API versions pinned by clients.
type ClientStore interface {
	ClientVersion(clientID string) (*db.ClientVersion, error)
}

// ClientVersionResolver resolves the version pinned by the authenticated
// client of the request. The client is identified by the userId claim of the
// JWT token that jwtauth.Verifier left in the request context; requests
// without a valid token resolve to no version. Pins are cached, so changing
// one requires calling Forget.
type ClientVersionResolver struct {
	store ClientStore
	cache *lru.Cache[string, string]
}

// ClientResolver creates a ClientVersionResolver that caches up to size pins.
func ClientResolver(store ClientStore, size int) (*ClientVersionResolver, error) {
	if store == nil {
		return nil, errors.New("client store is required")
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ClientVersionResolver{store: store, cache: cache}, nil
}

// ResolveVersion implements Resolver.
func (cr *ClientVersionResolver) ResolveVersion(r *http.Request) (string, error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return "", nil
	}
	clientID, ok := claims[clientIDClaim].(string)
	if !ok || clientID == "" {
		return "", nil
	}
	if version, ok := cr.cache.Get(clientID); ok {
		return version, nil
	}
	pin, err := cr.store.ClientVersion(clientID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// cache the miss too, most clients never pin a version
			cr.cache.Add(clientID, "")
			return "", nil
		}
		return "", err
	}
	log.Debugw("resolved pinned client version", "client", clientID, "version", pin.Version)
	cr.cache.Add(clientID, pin.Version)
	return pin.Version, nil
}

// Forget drops the cached pin of a client.
func (cr *ClientVersionResolver) Forget(clientID string) {
	cr.cache.Remove(clientID)
}
