package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// maxBodyBytes bounds request bodies; a tip request is a handful of fields.
const maxBodyBytes = 16 << 10

// Error codes carried in the "error" field of every non-2xx response.
const (
	// codeInvalidRequest: the body is not a JSON tip request (wrong
	// Content-Type, malformed JSON, unknown or mistyped field, too large).
	codeInvalidRequest = "invalid_request"
	// codeValidation: an explicit locale or currency the service can't use.
	codeValidation = "validation_error"
	// codeOutOfRange: an amount or percentage too large to compute or format.
	codeOutOfRange = "out_of_range"
	codeInternal   = "internal_error"
)

var errNotJSON = errors.New("Request body must be a JSON tip request sent with Content-Type: application/json")

// WriteJSON encodes data as the response body. The quote and locale
// payloads are small structs, so an encode failure can only come from a
// broken connection and is dropped.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the body of every failed tip, locale or routing request:
// a machine-readable code (one of the code* constants) and a message that
// can be shown next to the form field that caused it.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes an errorResponse. Garbage numeric input never reaches
// here; it is read as zero by the service.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   code,
		Message: message,
	})
}

// ParseJSON decodes a POST /tip body into v. The body must be a single
// JSON object sent as application/json, at most maxBodyBytes long, with no
// fields other than amount, tip_percent, round_up, locale and currency.
// Any failure is reported as errNotJSON so the client sees one stable
// invalid_request message.
func ParseJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return errNotJSON
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errNotJSON
	}

	return nil
}
