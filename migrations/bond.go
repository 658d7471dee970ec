package migrations

import (
	"slices"

	goversion "github.com/hashicorp/go-version"
)

// Bond links a registry, a request and the API version of the client that
// sent it, and caches the migration sets derived from them. A bond belongs to
// a single request and is not safe for concurrent use.
type Bond struct {
	registry    *Registry
	request     *Request
	userVersion string
	parsed      *goversion.Version

	allocated bool
	pending   []*Migration
	rolled    []*Migration
	applying  []*Migration
	computed  bool
}

// NewBond creates a bond. The user version must already be resolved by the
// caller; a well-formed token unknown to the registry is accepted and simply
// partitions the versions around it.
func NewBond(registry *Registry, request *Request, userVersion string) (*Bond, error) {
	parsed, err := ParseNumber(userVersion)
	if err != nil {
		return nil, err
	}
	return &Bond{
		registry:    registry,
		request:     request,
		userVersion: userVersion,
		parsed:      parsed,
	}, nil
}

// Registry returns the registry of the bond.
func (b *Bond) Registry() *Registry { return b.registry }

// Request returns the original request of the bond.
func (b *Bond) Request() *Request { return b.request }

// UserVersion returns the API version of the client.
func (b *Bond) UserVersion() string { return b.userVersion }

// PendingMigrations returns the migrations introduced after the user
// version, in execution order. Computing them also computes the rolled ones.
func (b *Bond) PendingMigrations() []*Migration {
	b.allocate()
	return b.pending
}

// RolledMigrations returns the migrations already reflected in the user
// version, in execution order.
func (b *Bond) RolledMigrations() []*Migration {
	b.allocate()
	return b.rolled
}

// ApplyingMigrations returns the pending migrations that apply to the
// request, in execution order.
func (b *Bond) ApplyingMigrations() []*Migration {
	if !b.computed {
		pending := b.PendingMigrations()
		b.applying = make([]*Migration, 0, len(pending))
		for _, m := range pending {
			if b.registry.AppliesTo(m, b.request) {
				b.applying = append(b.applying, m)
			}
		}
		b.computed = true
	}
	return b.applying
}

// IsMigrationPending reports whether m is pending for the client.
func (b *Bond) IsMigrationPending(m *Migration) bool {
	return slices.Contains(b.PendingMigrations(), m)
}

// IsMigrationRolled reports whether m is already part of the client version.
func (b *Bond) IsMigrationRolled(m *Migration) bool {
	return slices.Contains(b.RolledMigrations(), m)
}

// IsMigrationApplying reports whether m runs for this request.
func (b *Bond) IsMigrationApplying(m *Migration) bool {
	return slices.Contains(b.ApplyingMigrations(), m)
}

func (b *Bond) allocate() {
	if b.allocated {
		return
	}
	b.pending = []*Migration{}
	b.rolled = []*Migration{}
	for _, v := range b.registry.SortedVersions() {
		if v.compareParsed(b.parsed) > 0 {
			b.pending = append(b.pending, v.Migrations...)
		} else {
			b.rolled = append(b.rolled, v.Migrations...)
		}
	}
	b.allocated = true
}
