// Package changelog renders the version history of a registry for the
// clients of the API, as Markdown, HTML or JSON.
package changelog

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/vocdoni/api-migrations/migrations"
)

// Supported output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned when rendering to an unsupported format.
var ErrUnknownFormat = fmt.Errorf("unknown changelog format")

// Change describes one migration of a release.
type Change struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}

// Release is a version of the API and the changes it introduced.
type Release struct {
	Version string   `json:"version"`
	Latest  bool     `json:"latest,omitempty"`
	Changes []Change `json:"changes"`
}

// Changelog lists the releases of an API, newest first.
type Changelog struct {
	Title    string    `json:"title"`
	Releases []Release `json:"versions"`
}

// Build creates the changelog of the registry.
func Build(registry *migrations.Registry) *Changelog {
	cl := &Changelog{Title: "API changelog", Releases: []Release{}}
	versions := registry.SortedVersions()
	for i, v := range slices.Backward(versions) {
		release := Release{
			Version: v.Number,
			Latest:  i == len(versions)-1,
			Changes: make([]Change, 0, len(v.Migrations)),
		}
		for _, m := range v.Migrations {
			release.Changes = append(release.Changes, Change{
				Name:        m.Name,
				Description: m.Description,
				Pattern:     m.Pattern,
			})
		}
		cl.Releases = append(cl.Releases, release)
	}
	return cl
}

// Markdown renders the changelog as a Markdown document.
func (cl *Changelog) Markdown() []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", cl.Title)
	for _, release := range cl.Releases {
		fmt.Fprintf(&sb, "\n## %s", release.Version)
		if release.Latest {
			sb.WriteString(" (latest)")
		}
		sb.WriteString("\n\n")
		if len(release.Changes) == 0 {
			sb.WriteString("No payload changes.\n")
			continue
		}
		for _, change := range release.Changes {
			fmt.Fprintf(&sb, "- **%s**", change.Name)
			if change.Pattern != "" {
				fmt.Fprintf(&sb, " `%s`", change.Pattern)
			}
			if change.Description != "" {
				fmt.Fprintf(&sb, ": %s", change.Description)
			}
			sb.WriteString("\n")
		}
	}
	return []byte(sb.String())
}

// HTML renders the Markdown changelog to HTML.
func (cl *Changelog) HTML() []byte {
	return blackfriday.Run(cl.Markdown())
}

// JSON encodes the changelog as JSON.
func (cl *Changelog) JSON() ([]byte, error) {
	return json.Marshal(cl)
}

// Render renders the changelog in the given format and returns it with its
// content type. An empty format means Markdown.
func (cl *Changelog) Render(format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "", FormatMarkdown:
		return cl.Markdown(), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		return cl.HTML(), "text/html; charset=utf-8", nil
	case FormatJSON:
		data, err := cl.JSON()
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
