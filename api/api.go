// Package api provides the HTTP API of the posts service. Every versioned
// route goes through the versioning middleware, so handlers only deal with
// the latest shape of the payloads while clients keep using the version they
// were built against.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vocdoni/api-migrations/api/apicommon"
	"github.com/vocdoni/api-migrations/changelog"
	"github.com/vocdoni/api-migrations/db"
	"github.com/vocdoni/api-migrations/migrations"
	"github.com/vocdoni/api-migrations/validator"
	"github.com/vocdoni/api-migrations/versioning"
	"go.vocdoni.io/dvote/log"
)

// defaultClientCacheSize is the number of client version pins kept in memory.
const defaultClientCacheSize = 1024

// Config holds the configuration of the API.
type Config struct {
	Host   string
	Port   int
	Secret string
	DB     *db.MongoStorage
	// Registry holds the versions of the API. It is frozen by New.
	Registry *migrations.Registry
	// StrictVersions rejects requests that declare an unknown API version
	// instead of serving them in the latest one.
	StrictVersions  bool
	ClientCacheSize int
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	db        *db.MongoStorage
	auth      *jwtauth.JWTAuth
	host      string
	port      int
	router    *chi.Mux
	registry  *migrations.Registry
	changelog *changelog.Changelog
	clients   *versioning.ClientVersionResolver
	validator *validator.Validator
	strict    bool
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.DB == nil || conf.Registry == nil {
		return nil, fmt.Errorf("database and version registry are required")
	}
	if conf.Registry.Latest() == nil {
		return nil, migrations.ErrEmptyRegistry
	}
	conf.Registry.Freeze()
	cacheSize := conf.ClientCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultClientCacheSize
	}
	clients, err := versioning.ClientResolver(conf.DB, cacheSize)
	if err != nil {
		return nil, err
	}
	return &API{
		db:        conf.DB,
		auth:      jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:      conf.Host,
		port:      conf.Port,
		registry:  conf.Registry,
		changelog: changelog.Build(conf.Registry),
		clients:   clients,
		validator: validator.New(),
		strict:    conf.StrictVersions,
	}, nil
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// router creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", versioning.DefaultHeader},
		ExposedHeaders:   []string{versioning.DefaultHeader},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// unversioned routes
	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warnw("failed to write ping response", "error", err)
		}
	})
	log.Infow("new route", "method", "GET", "path", metricsEndpoint)
	r.Handle(metricsEndpoint, promhttp.Handler())

	r.Group(func(r chi.Router) {
		// seek and verify JWT tokens, so the pinned version of the client
		// can be resolved, without rejecting anonymous requests
		r.Use(jwtauth.Verifier(a.auth))
		// migrate requests and responses between the client version and
		// the latest one
		r.Use(versioning.New(versioning.Config{
			Registry: a.registry,
			Resolver: versioning.ChainResolver(versioning.HeaderResolver(versioning.DefaultHeader), a.clients),
			Strict:   a.strict,
		}))

		// protected routes
		r.Group(func(r chi.Router) {
			// handle valid JWT tokens
			r.Use(a.authenticator)
			// get the pinned version of the client
			log.Infow("new route", "method", "GET", "path", clientVersionEndpoint)
			r.Get(clientVersionEndpoint, a.clientVersionHandler)
			// pin the version of the client
			log.Infow("new route", "method", "PUT", "path", clientVersionEndpoint)
			r.With(a.validator.ValidateMiddleware(apicommon.ClientVersionRequest{})).
				Put(clientVersionEndpoint, a.setClientVersionHandler)
			// unpin the version of the client
			log.Infow("new route", "method", "DELETE", "path", clientVersionEndpoint)
			r.Delete(clientVersionEndpoint, a.deleteClientVersionHandler)
		})

		// public routes
		r.Group(func(r chi.Router) {
			// list the API versions
			log.Infow("new route", "method", "GET", "path", versionsEndpoint)
			r.Get(versionsEndpoint, a.versionsHandler)
			// get the changelog
			log.Infow("new route", "method", "GET", "path", changelogEndpoint)
			r.Get(changelogEndpoint, a.changelogHandler)
			// get a post
			log.Infow("new route", "method", "GET", "path", postEndpoint)
			r.Get(postEndpoint, a.postHandler)
			// create or replace a post
			log.Infow("new route", "method", "PUT", "path", postEndpoint)
			r.With(a.validator.ValidateMiddleware(apicommon.PostRequest{})).
				Put(postEndpoint, a.setPostHandler)
			// delete a post
			log.Infow("new route", "method", "DELETE", "path", postEndpoint)
			r.Delete(postEndpoint, a.deletePostHandler)
		})
	})
	a.router = r
	return r
}
