// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

// MetadataKey is a type to define the key for the metadata stored in the
// context.
type MetadataKey string

// ClientIDMetadataKey is the key used to store the authenticated client id in
// the context.
const ClientIDMetadataKey MetadataKey = "clientId"

// FormatParam is the query string parameter that selects the format of the
// changelog.
const FormatParam = "format"
