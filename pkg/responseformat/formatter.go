// Package responseformat writes HTTP responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Content types
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgPack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ErrorResponse is the body written for failed requests
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Details   string `json:"details,omitempty"`
}

// WantsMsgPack reports whether the request asked for MessagePack, either with
// format=msgpack or an Accept header
func WantsMsgPack(req *http.Request) bool {
	if req.URL.Query().Get("format") == "msgpack" {
		return true
	}
	return req.Header.Get("Accept") == ContentTypeMsgPack
}

// WriteResponse writes data with a 200 status
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any) error {
	return f.WriteStatus(w, req, http.StatusOK, data)
}

// WriteStatus writes data with the given status. JSON is the default format.
func (f *Formatter) WriteStatus(w http.ResponseWriter, req *http.Request, status int, data any) error {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if WantsMsgPack(req) {
		w.Header().Set("Content-Type", ContentTypeMsgPack)
		w.WriteHeader(status)
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json") // Use json tags for MessagePack
		return encoder.Encode(data)
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes an ErrorResponse. err, when set, becomes the details field.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message string, err error) error {
	resp := ErrorResponse{
		Error:     message,
		Status:    status,
		Timestamp: time.Now().Unix(),
	}
	if err != nil {
		resp.Details = err.Error()
	}
	return f.WriteStatus(w, req, status, resp)
}
