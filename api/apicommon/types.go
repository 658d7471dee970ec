package apicommon

import (
	"time"

	"github.com/vocdoni/api-migrations/db"
)

// PostRequest is the body of a post creation or update, in the shape of the
// latest API version. Older clients send it in their own shape and the
// versioning middleware migrates it before it reaches the handler.
type PostRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body"`
	Author   string `json:"author" validate:"required"`
	Category string `json:"category"`
}

// Post is a post as returned by the API, in the shape of the latest API
// version.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostFromDB converts a stored post into its API representation.
func PostFromDB(p *db.Post) *Post {
	return &Post{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Author:    p.Author,
		Category:  p.Category,
		UpdatedAt: p.UpdatedAt,
	}
}

// ClientVersionRequest pins the API version of the authenticated client.
type ClientVersionRequest struct {
	Version string `json:"version" validate:"required,apiversion"`
}

// ClientVersionResponse is the API version pinned by a client.
type ClientVersionResponse struct {
	ClientID  string    `json:"clientId"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VersionInfo describes a version of the API.
type VersionInfo struct {
	Version    string   `json:"version"`
	Migrations []string `json:"migrations"`
}

// VersionsResponse lists the versions of the API, oldest first, along with
// the latest one and the one the request was served in.
type VersionsResponse struct {
	Latest   string        `json:"latest"`
	Current  string        `json:"current"`
	Versions []VersionInfo `json:"versions"`
}
