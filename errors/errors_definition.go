// Package errors provides the API error type and the error definitions of the
// service.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// Error codes in the 40001-49999 range are the user's fault, and they return
// HTTP Status 4XX, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault and they return HTTP Status
// 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after
// the current last 4XXXX or 5XXXX. Gaps are codes used in the past and must not
// be reused.
var (
	// Authentication errors (401)
	ErrUnauthorized = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}

	// Validation errors (400)
	ErrMalformedBody     = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid request body")}
	ErrMalformedURLParam = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}
	ErrInvalidAPIVersion = Error{Code: 40040, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid API version")}
	ErrUnknownAPIVersion = Error{Code: 40041, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unknown API version")}
	ErrInvalidFormat     = Error{Code: 40042, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unsupported format")}

	// Not found errors (404)
	ErrPostNotFound          = Error{Code: 40401, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("post not found")}
	ErrClientVersionNotFound = Error{Code: 40402, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("client has no pinned API version")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrMigrationFailed            = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: payload migration failed"), LogLevel: "error"}
	ErrVersionResolutionFailed    = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: cannot resolve API version"), LogLevel: "error"}
)
