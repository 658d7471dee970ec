// Package pathmatch decides whether a migration pattern covers a request
// path. Matchers are pure and safe for concurrent use; compiled patterns are
// cached.
package pathmatch

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.vocdoni.io/dvote/log"
)

// cacheSize is the number of compiled patterns kept by each matcher.
const cacheSize = 512

// Matcher checks a pattern against a request path.
type Matcher interface {
	Match(pattern, path string) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(pattern, path string) bool

// Match calls f(pattern, path).
func (f MatcherFunc) Match(pattern, path string) bool {
	return f(pattern, path)
}

// Exact matches paths equal to the pattern.
func Exact() Matcher {
	return MatcherFunc(func(pattern, path string) bool {
		return pattern == path
	})
}

// sinatraParam matches Sinatra style named parameters like :id.
var sinatraParam = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// ChiMatcher matches paths with chi routing patterns, e.g. /posts/{id} or
// /files/*. Sinatra style parameters (/posts/:id) are accepted too.
type ChiMatcher struct {
	cache *lru.Cache[string, *chi.Mux]
}

// Chi returns a new ChiMatcher.
func Chi() *ChiMatcher {
	cache, err := lru.New[string, *chi.Mux](cacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &ChiMatcher{cache: cache}
}

// Match reports whether the path is routed by the pattern. Invalid patterns
// match nothing.
func (m *ChiMatcher) Match(pattern, path string) bool {
	mux, ok := m.cache.Get(pattern)
	if !ok {
		var err error
		if mux, err = compileChi(pattern); err != nil {
			log.Warnw("invalid migration pattern", "pattern", pattern, "error", err)
		}
		m.cache.Add(pattern, mux)
	}
	if mux == nil {
		return false
	}
	return mux.Match(chi.NewRouteContext(), http.MethodGet, path)
}

// ChiPattern translates Sinatra style parameters to chi ones.
func ChiPattern(pattern string) string {
	return sinatraParam.ReplaceAllString(pattern, "{$1}")
}

func compileChi(pattern string) (mux *chi.Mux, err error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern must begin with '/'")
	}
	// chi panics on malformed patterns
	defer func() {
		if r := recover(); r != nil {
			mux, err = nil, fmt.Errorf("%v", r)
		}
	}()
	mux = chi.NewRouter()
	mux.Handle(ChiPattern(pattern), http.NotFoundHandler())
	return mux, nil
}

// GlobMatcher matches paths with glob patterns where '/' separates
// segments: /posts/* matches /posts/1 but not /posts/1/comments, while
// /posts/** matches both.
type GlobMatcher struct {
	cache *lru.Cache[string, glob.Glob]
}

// Glob returns a new GlobMatcher.
func Glob() *GlobMatcher {
	cache, err := lru.New[string, glob.Glob](cacheSize)
	if err != nil {
		panic(err)
	}
	return &GlobMatcher{cache: cache}
}

// Match reports whether the path matches the glob pattern. Invalid patterns
// match nothing.
func (m *GlobMatcher) Match(pattern, path string) bool {
	g, ok := m.cache.Get(pattern)
	if !ok {
		var err error
		if g, err = glob.Compile(pattern, '/'); err != nil {
			log.Warnw("invalid migration pattern", "pattern", pattern, "error", err)
			g = nil
		}
		m.cache.Add(pattern, g)
	}
	if g == nil {
		return false
	}
	return g.Match(path)
}
