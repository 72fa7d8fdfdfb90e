// Package responseformat writes API responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/roofsolar/pkg/solar"
)

// MsgPackContentType is sent when the caller asks for format=msgpack
const MsgPackContentType = "application/x-msgpack"

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct {
	enableCORS bool
}

// NewFormatter creates a new response formatter. With enableCORS set every
// response allows any origin.
func NewFormatter(enableCORS bool) *Formatter {
	return &Formatter{enableCORS: enableCORS}
}

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Error      string  `json:"error"`
	Field      string  `json:"field,omitempty"`
	Value      float64 `json:"value,omitempty"`
	Constraint string  `json:"constraint,omitempty"`
}

// WriteResponse writes data with status 200
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any) error {
	return f.WriteStatus(w, req, http.StatusOK, data)
}

// WriteStatus writes the response in the appropriate format based on the query parameter.
// JSON is the default format. MessagePack is used when format=msgpack is specified.
func (f *Formatter) WriteStatus(w http.ResponseWriter, req *http.Request, status int, data any) error {
	if f.enableCORS {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	if WantsMsgPack(req) {
		return f.writeMsgPack(w, status, data)
	}

	return f.writeJSON(w, status, data)
}

// WriteError maps err to a status code and writes it as an ErrorBody. Invalid
// input is a 400 and reports the rejected field; anything else is a 500.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, err error) (int, error) {
	status := http.StatusInternalServerError
	body := ErrorBody{Error: err.Error()}

	var ie *solar.InputError
	switch {
	case errors.As(err, &ie):
		status = http.StatusBadRequest
		body.Field = ie.Field
		body.Value = ie.Value
		body.Constraint = ie.Constraint
	case errors.Is(err, solar.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	return status, f.WriteStatus(w, req, status, body)
}

// WantsMsgPack reports whether the request asked for MessagePack
func WantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get("format") == "msgpack"
}

func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", MsgPackContentType)
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
