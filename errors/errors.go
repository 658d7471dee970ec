package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"go.vocdoni.io/dvote/log"
)

// Error is used by handlers and middlewares to wrap errors, assigning a unique
// error code and the HTTP status that should be used.
type Error struct {
	Err        error  // Original error
	Code       int    // Error code
	HTTPstatus int    // HTTP status code to return
	LogLevel   string // Log level for this error (defaults to "debug")
	Data       any    // Optional data to include in the error response
}

// MarshalJSON returns a JSON containing Err.Error(), Code and Data. Field
// HTTPstatus is ignored.
//
// Example output: {"error":"post not found","code":40401}
func (e Error) MarshalJSON() ([]byte, error) {
	// json.Marshal doesn't call Err.Error(), so the message is copied here
	return json.Marshal(
		struct {
			Error string `json:"error"`
			Code  int    `json:"code"`
			Data  any    `json:"data,omitempty"`
		}{
			Error: e.Err.Error(),
			Code:  e.Code,
			Data:  e.Data,
		})
}

// Error returns the message of the wrapped error.
func (e Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Write serializes the error as JSON with the HTTP status of the error, and
// logs it with the appropriate level.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}

	// Get caller information for better logging
	pc, file, line, _ := runtime.Caller(1)
	caller := runtime.FuncForPC(pc).Name()

	if e.HTTPstatus >= 500 {
		log.Errorw(e.Err, fmt.Sprintf("API error response [%d]: %s (code: %d, caller: %s, file: %s:%d)",
			e.HTTPstatus, e.Error(), e.Code, caller, file, line))
	} else if log.Level() == log.LogLevelDebug {
		errMsg := fmt.Sprintf("API error response [%d]: %s (code: %d, caller: %s)",
			e.HTTPstatus, e.Error(), e.Code, caller)
		switch e.LogLevel {
		case "info":
			log.Infow(errMsg)
		case "warn":
			log.Warnw(errMsg)
		default:
			log.Debugw(errMsg)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.HTTPstatus)
	_, _ = w.Write(msg)
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return e.with(fmt.Sprintf(format, args...))
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	return e.with(s)
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return e.with(err.Error())
}

// WithData returns a copy of Error carrying data in the response.
func (e Error) WithData(data any) Error {
	e.Data = data
	return e
}

func (e Error) with(s string) Error {
	e.Err = fmt.Errorf("%w: %v", e.Err, s)
	return e
}
