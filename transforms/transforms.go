// Package transforms provides reusable migrations for the most common
// payload changes, and loads registries declared in YAML.
package transforms

import (
	"github.com/vocdoni/api-migrations/migrations"
)

// RenameField builds a migration for a field renamed from `from` to `to`.
// Upwards it renames the request parameter; downwards it renames the key back
// in the JSON response body, whether the body is an object or an array of
// objects.
func RenameField(name, pattern, description, from, to string) *migrations.Migration {
	return &migrations.Migration{
		Name:        name,
		Pattern:     pattern,
		Description: description,
		Up: func(x *migrations.Exchange) (*migrations.Request, error) {
			x.Request().RenameParam(from, to)
			return nil, nil
		},
		Down: func(x *migrations.Exchange) (*migrations.Response, error) {
			return rewriteBody(x, func(obj map[string]any) {
				if v, ok := obj[to]; ok {
					delete(obj, to)
					obj[from] = v
				}
			})
		},
	}
}

// DropField builds a migration for a field the API no longer accepts nor
// returns. Upwards the parameter is discarded; downwards the field is added
// back to the response with the given placeholder value.
func DropField(name, pattern, description, field string, placeholder any) *migrations.Migration {
	return &migrations.Migration{
		Name:        name,
		Pattern:     pattern,
		Description: description,
		Up: func(x *migrations.Exchange) (*migrations.Request, error) {
			x.Request().DeleteParam(field)
			return nil, nil
		},
		Down: func(x *migrations.Exchange) (*migrations.Response, error) {
			return rewriteBody(x, func(obj map[string]any) {
				if _, ok := obj[field]; !ok {
					obj[field] = placeholder
				}
			})
		},
	}
}

// Noop builds a migration with no transforms, used to flag a behaviour
// change that handlers check through the request bond.
func Noop(name, pattern, description string) *migrations.Migration {
	return &migrations.Migration{
		Name:        name,
		Pattern:     pattern,
		Description: description,
	}
}

// rewriteBody applies fn to the JSON object body of the response, or to every
// object of a JSON array body. Bodies that are empty or not JSON objects or
// arrays are left untouched.
func rewriteBody(x *migrations.Exchange, fn func(map[string]any)) (*migrations.Response, error) {
	resp, err := x.Response()
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	var body any
	if err := resp.DecodeJSON(&body); err != nil {
		// not every response is JSON, e.g. error pages from proxies
		return nil, nil
	}
	switch t := body.(type) {
	case map[string]any:
		fn(t)
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				fn(obj)
			}
		}
	default:
		return nil, nil
	}
	migrated := resp.Clone()
	if err := migrated.EncodeJSON(body); err != nil {
		return nil, err
	}
	return migrated, nil
}
