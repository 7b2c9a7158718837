package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape every endpoint returns. Front-end consumers
// key off Success/Message, so the field set must stay stable.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(env)
	if err != nil {
		// best-effort error response; avoid writing partial JSON
		http.Error(w, `{"success":false,"message":"encode error","error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, werr := w.Write(body); werr != nil {
		// nothing we can do at this point
		_ = werr
	}
}

// JSON writes a success envelope with the given payload.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// JSONError writes a failure envelope. message is human readable; errCode is a
// stable machine readable identifier.
func JSONError(w http.ResponseWriter, status int, message, errCode string) {
	write(w, status, Envelope{Success: false, Message: message, Error: errCode})
}
