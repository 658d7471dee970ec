package migrations

import (
	"fmt"
	"slices"

	"github.com/vocdoni/api-migrations/pathmatch"
)

// Registry is the collection of versions of an API. Versions are added
// during startup; once traffic is served the registry must only be read,
// which Freeze enforces.
type Registry struct {
	versions []*Version
	matcher  pathmatch.Matcher
	frozen   bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithMatcher sets the matcher used to check migration patterns against
// request paths. The default is pathmatch.Chi().
func WithMatcher(m pathmatch.Matcher) Option {
	return func(r *Registry) {
		r.matcher = m
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.matcher == nil {
		r.matcher = pathmatch.Chi()
	}
	return r
}

// AddVersion defines a new version with the given migrations and keeps the
// versions sorted. Registering an equivalent number twice fails with
// ErrDuplicateVersion.
func (r *Registry) AddVersion(number string, migs ...*Migration) (*Version, error) {
	if r.frozen {
		return nil, fmt.Errorf("%w: cannot add version %s", ErrRegistryFrozen, number)
	}
	version, err := NewVersion(number, migs...)
	if err != nil {
		return nil, err
	}
	if existing := r.lookup(version); existing != nil {
		return nil, fmt.Errorf("%w: %s conflicts with %s", ErrDuplicateVersion, number, existing.Number)
	}
	r.versions = append(r.versions, version)
	slices.SortStableFunc(r.versions, func(a, b *Version) int { return a.Compare(b) })
	return version, nil
}

// MustAddVersion is like AddVersion but panics on error. Meant for static
// registry definitions.
func (r *Registry) MustAddVersion(number string, migs ...*Migration) *Version {
	v, err := r.AddVersion(number, migs...)
	if err != nil {
		panic(err)
	}
	return v
}

// Freeze makes any further AddVersion call fail.
func (r *Registry) Freeze() {
	r.frozen = true
}

// SortedVersions returns the versions in ascending order. The returned slice
// is a copy, so changing it does not affect the registry.
func (r *Registry) SortedVersions() []*Version {
	return slices.Clone(r.versions)
}

// Latest returns the greatest version, or nil if the registry is empty.
func (r *Registry) Latest() *Version {
	if len(r.versions) == 0 {
		return nil
	}
	return r.versions[len(r.versions)-1]
}

// Lookup returns the version equivalent to the given token.
func (r *Registry) Lookup(token string) (*Version, bool) {
	parsed, err := ParseNumber(token)
	if err != nil {
		return nil, false
	}
	for _, v := range r.versions {
		if v.compareParsed(parsed) == 0 {
			return v, true
		}
	}
	return nil, false
}

// Resolve returns the registered version number matching token. Empty,
// invalid or unknown tokens resolve to the latest version.
func (r *Registry) Resolve(token string) (string, error) {
	latest := r.Latest()
	if latest == nil {
		return "", ErrEmptyRegistry
	}
	if token == "" {
		return latest.Number, nil
	}
	if v, ok := r.Lookup(token); ok {
		return v.Number, nil
	}
	return latest.Number, nil
}

// Migrations returns every migration of the registry in execution order.
func (r *Registry) Migrations() []*Migration {
	var migs []*Migration
	for _, v := range r.versions {
		migs = append(migs, v.Migrations...)
	}
	return migs
}

// MigrationsSince returns, in execution order, the migrations of every
// version strictly greater than token.
func (r *Registry) MigrationsSince(token string) ([]*Migration, error) {
	parsed, err := ParseNumber(token)
	if err != nil {
		return nil, err
	}
	var migs []*Migration
	for _, v := range r.versions {
		if v.compareParsed(parsed) > 0 {
			migs = append(migs, v.Migrations...)
		}
	}
	return migs, nil
}

// MigrationsFor returns the migrations since token that apply to req.
func (r *Registry) MigrationsFor(req *Request, token string) ([]*Migration, error) {
	since, err := r.MigrationsSince(token)
	if err != nil {
		return nil, err
	}
	migs := make([]*Migration, 0, len(since))
	for _, m := range since {
		if r.AppliesTo(m, req) {
			migs = append(migs, m)
		}
	}
	return migs, nil
}

// IsMigrationActive reports whether m belongs to a version strictly greater
// than token, i.e. whether a client on token still needs it.
func (r *Registry) IsMigrationActive(m *Migration, token string) (bool, error) {
	parsed, err := ParseNumber(token)
	if err != nil {
		return false, err
	}
	for _, v := range r.versions {
		if v.compareParsed(parsed) > 0 && v.HasMigration(m) {
			return true, nil
		}
	}
	return false, nil
}

// AppliesTo reports whether m applies to req. The migration predicate wins
// if set; otherwise its pattern is matched against the request path, and a
// migration without pattern applies to nothing.
func (r *Registry) AppliesTo(m *Migration, req *Request) bool {
	if m.AppliesTo != nil {
		return m.AppliesTo(req)
	}
	if m.Pattern == "" || req == nil {
		return false
	}
	return r.matcher.Match(m.Pattern, req.Path)
}

func (r *Registry) lookup(version *Version) *Version {
	for _, v := range r.versions {
		if v.Equal(version) {
			return v
		}
	}
	return nil
}
