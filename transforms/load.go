package transforms

import (
	"fmt"
	"io"

	"github.com/vocdoni/api-migrations/migrations"
	"github.com/vocdoni/api-migrations/validator"
	"gopkg.in/yaml.v3"
)

// Migration kinds accepted in registry definitions.
const (
	KindRename = "rename"
	KindDrop   = "drop"
	KindNoop   = "noop"
)

// RegistryDefinition is the YAML form of a registry:
//
//	versions:
//	  - number: "2017-12-24"
//	  - number: "2017-12-25"
//	    migrations:
//	      - name: drop_author_id
//	        kind: rename
//	        pattern: /posts/:id
//	        description: The author_id field is now author.
//	        from: author_id
//	        to: author
type RegistryDefinition struct {
	Versions []VersionDefinition `yaml:"versions" validate:"required,min=1,unique=Number,dive"`
}

// VersionDefinition is the YAML form of a version.
type VersionDefinition struct {
	Number     string                `yaml:"number" validate:"required,apiversion"`
	Migrations []MigrationDefinition `yaml:"migrations" validate:"dive"`
}

// MigrationDefinition is the YAML form of a migration.
type MigrationDefinition struct {
	Name        string `yaml:"name" validate:"required"`
	Kind        string `yaml:"kind" validate:"required,oneof=rename drop noop"`
	Pattern     string `yaml:"pattern" validate:"omitempty,pathpattern"`
	Description string `yaml:"description"`
	From        string `yaml:"from" validate:"required_if=Kind rename"`
	To          string `yaml:"to" validate:"required_if=Kind rename"`
	Field       string `yaml:"field" validate:"required_if=Kind drop"`
	Placeholder any    `yaml:"placeholder"`
}

// Build returns the migration described by the definition.
func (d MigrationDefinition) Build() (*migrations.Migration, error) {
	switch d.Kind {
	case KindRename:
		return RenameField(d.Name, d.Pattern, d.Description, d.From, d.To), nil
	case KindDrop:
		return DropField(d.Name, d.Pattern, d.Description, d.Field, d.Placeholder), nil
	case KindNoop:
		return Noop(d.Name, d.Pattern, d.Description), nil
	default:
		return nil, fmt.Errorf("unknown migration kind %q", d.Kind)
	}
}

// LoadRegistry reads a YAML registry definition and builds the registry. The
// whole definition is validated before any version is added.
func LoadRegistry(r io.Reader, opts ...migrations.Option) (*migrations.Registry, error) {
	var def RegistryDefinition
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("cannot decode registry definition: %w", err)
	}
	if err := validator.New().Validate(&def); err != nil {
		return nil, fmt.Errorf("invalid registry definition: %w", validator.FieldErrors(err))
	}
	registry := migrations.NewRegistry(opts...)
	for _, vd := range def.Versions {
		migs := make([]*migrations.Migration, 0, len(vd.Migrations))
		for _, md := range vd.Migrations {
			m, err := md.Build()
			if err != nil {
				return nil, err
			}
			migs = append(migs, m)
		}
		if _, err := registry.AddVersion(vd.Number, migs...); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
