package versioning

import (
	"context"

	"github.com/vocdoni/api-migrations/migrations"
)

type contextKey string

const bondKey contextKey = "versioningBond"

// WithBond returns a copy of ctx that carries the bond.
func WithBond(ctx context.Context, bond *migrations.Bond) context.Context {
	return context.WithValue(ctx, bondKey, bond)
}

// BondFromContext returns the bond the middleware stored for the request.
func BondFromContext(ctx context.Context) (*migrations.Bond, bool) {
	bond, ok := ctx.Value(bondKey).(*migrations.Bond)
	return bond, ok && bond != nil
}

// Version returns the API version the request is served in, or an empty
// string outside the middleware.
func Version(ctx context.Context) string {
	if bond, ok := BondFromContext(ctx); ok {
		return bond.UserVersion()
	}
	return ""
}

// PendingMigrations returns the migrations introduced after the version of
// the client.
func PendingMigrations(ctx context.Context) []*migrations.Migration {
	if bond, ok := BondFromContext(ctx); ok {
		return bond.PendingMigrations()
	}
	return nil
}

// RolledMigrations returns the migrations already part of the version of the
// client.
func RolledMigrations(ctx context.Context) []*migrations.Migration {
	if bond, ok := BondFromContext(ctx); ok {
		return bond.RolledMigrations()
	}
	return nil
}

// ApplyingMigrations returns the migrations that run for the request.
func ApplyingMigrations(ctx context.Context) []*migrations.Migration {
	if bond, ok := BondFromContext(ctx); ok {
		return bond.ApplyingMigrations()
	}
	return nil
}

// IsMigrationPending reports whether the client predates m. Handlers use it
// to keep old behaviour that a no-op migration marks as changed.
func IsMigrationPending(ctx context.Context, m *migrations.Migration) bool {
	bond, ok := BondFromContext(ctx)
	return ok && bond.IsMigrationPending(m)
}

// IsMigrationRolled reports whether the client version already includes m.
// Outside the middleware every migration counts as rolled.
func IsMigrationRolled(ctx context.Context, m *migrations.Migration) bool {
	bond, ok := BondFromContext(ctx)
	return !ok || bond.IsMigrationRolled(m)
}

// IsMigrationApplying reports whether m runs for the request.
func IsMigrationApplying(ctx context.Context, m *migrations.Migration) bool {
	bond, ok := BondFromContext(ctx)
	return ok && bond.IsMigrationApplying(m)
}
