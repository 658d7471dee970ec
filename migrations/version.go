package migrations

import (
	"fmt"
	"regexp"
	"slices"

	goversion "github.com/hashicorp/go-version"
)

var (
	// dateDash matches a dash joining two numeric segments, as in 2017-12-24.
	dateDash = regexp.MustCompile(`(\d)-(\d)`)
	// dotAlpha matches a dot opening an alphabetic segment, as in 1.0.a.
	dotAlpha = regexp.MustCompile(`(\d)\.([A-Za-z])`)
)

// ParseNumber parses a version token. Dotted versions (1.2.10) and dates
// (2017-12-24) are both accepted; dash-joined numeric segments are compared
// as separate segments, so 2017-2-3 orders before 2017-10-1. An alphabetic
// segment starts a pre-release, so 1.0.a orders before 1.0.
func ParseNumber(token string) (*goversion.Version, error) {
	normalized := token
	// two passes, since adjacent matches share a digit in tokens like 1-2-3
	for range 2 {
		normalized = dateDash.ReplaceAllString(normalized, "$1.$2")
	}
	normalized = dotAlpha.ReplaceAllString(normalized, "$1-$2")
	v, err := goversion.NewVersion(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidVersion, token, err)
	}
	return v, nil
}

// Compare compares two version tokens. It returns -1, 0 or 1 if a is smaller,
// equal or greater than b.
func Compare(a, b string) (int, error) {
	va, err := ParseNumber(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseNumber(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// Version is a revision of the API payload contract together with the
// migrations introduced by it, in execution order.
type Version struct {
	Number     string
	Migrations []*Migration

	parsed *goversion.Version
}

// NewVersion creates a version. The first version of an API should have no
// migrations, since no client can be behind it.
func NewVersion(number string, migs ...*Migration) (*Version, error) {
	parsed, err := ParseNumber(number)
	if err != nil {
		return nil, err
	}
	return &Version{
		Number:     number,
		Migrations: migs,
		parsed:     parsed,
	}, nil
}

// Compare returns -1, 0 or 1 if v is smaller, equal or greater than other.
func (v *Version) Compare(other *Version) int {
	return v.parsed.Compare(other.parsed)
}

// CompareNumber compares v against a raw version token.
func (v *Version) CompareNumber(token string) (int, error) {
	parsed, err := ParseNumber(token)
	if err != nil {
		return 0, err
	}
	return v.parsed.Compare(parsed), nil
}

func (v *Version) compareParsed(other *goversion.Version) int {
	return v.parsed.Compare(other)
}

// GreaterThan reports whether v is greater than other.
func (v *Version) GreaterThan(other *Version) bool { return v.Compare(other) > 0 }

// LessThan reports whether v is smaller than other.
func (v *Version) LessThan(other *Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other have equivalent numbers.
func (v *Version) Equal(other *Version) bool { return v.Compare(other) == 0 }

// GreaterThanOrEqual reports whether v is greater than or equal to other.
func (v *Version) GreaterThanOrEqual(other *Version) bool { return v.Compare(other) >= 0 }

// LessThanOrEqual reports whether v is smaller than or equal to other.
func (v *Version) LessThanOrEqual(other *Version) bool { return v.Compare(other) <= 0 }

// HasMigration reports whether the migration was introduced by this version.
func (v *Version) HasMigration(m *Migration) bool {
	return slices.Contains(v.Migrations, m)
}

func (v *Version) String() string {
	return v.Number
}
