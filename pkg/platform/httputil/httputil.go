// Package httputil carries the JSON helpers shared by all HTTP handlers:
// response writing, domain-error translation, and request decoding.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "matchport/pkg/domain-errors"
)

// errorResponse is the uniform error body. The description is omitted for
// internal errors so storage details never leak to clients.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError translates a domain error into status and body. Unknown
// errors are treated as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// maxBodyBytes bounds request bodies; none of the API's payloads come
// close to this.
const maxBodyBytes = 1 << 20

// Validator lets request types hook validation into decoding.
type Validator interface {
	Validate() error
}

// DecodeAndPrepare decodes the JSON body into T and runs its validation if
// it implements Validator. On failure it writes the error response and
// returns ok == false; the handler just returns.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req T
	dec := json.NewDecoder(r.Body)
	// An absent body decodes to the zero value; endpoints whose fields are
	// all optional accept it, the rest reject it in Validate.
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}

	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
