package db

import "time"

// ClientVersion is the API version a client pinned. Requests of the client
// that do not declare a version are served in this one.
type ClientVersion struct {
	ClientID  string    `json:"clientId" bson:"_id"`
	Version   string    `json:"version" bson:"version"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Post is a post of the API, always stored in the shape of the latest API
// version.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Author    string    `json:"author" bson:"author"`
	Category  string    `json:"category" bson:"category"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
