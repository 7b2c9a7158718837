package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestJSONEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, 201, "created", map[string]int{"id": 7})
	if w.Code != 201 {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || env.Message != "created" || env.Error != "" {
		t.Fatalf("unexpected envelope: %#v", env)
	}
}

func TestJSONErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, 404, "client 9 not found", "not_found")
	if w.Code != 404 {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error != "not_found" || env.Message != "client 9 not found" {
		t.Fatalf("unexpected envelope: %#v", env)
	}
	if env.Data != nil {
		t.Fatalf("error envelope must omit data, got %#v", env.Data)
	}
}
