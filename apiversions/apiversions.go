// Package apiversions holds the version history of the posts API. Each
// version lives in its own file, named after its date, and declares the
// migrations it introduced.
package apiversions

import (
	"fmt"

	"github.com/vocdoni/api-migrations/migrations"
)

// postPattern is the path of a single post.
const postPattern = "/posts/:id"

// definition is a version number and the migrations introduced by it.
type definition struct {
	number     string
	migrations []*migrations.Migration
}

// history lists every version of the API. New versions are appended at the
// end.
var history = []definition{
	{number: V20171224},
	{number: V20171225, migrations: []*migrations.Migration{DropAuthorID}},
	{number: V20171226, migrations: []*migrations.Migration{RenameCategoryIDToCategory}},
}

// New builds a frozen registry with the whole API history.
func New(opts ...migrations.Option) (*migrations.Registry, error) {
	registry := migrations.NewRegistry(opts...)
	for _, def := range history {
		if _, err := registry.AddVersion(def.number, def.migrations...); err != nil {
			return nil, fmt.Errorf("cannot add version %s: %w", def.number, err)
		}
	}
	registry.Freeze()
	return registry, nil
}
