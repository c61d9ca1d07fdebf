package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"quotelines/logger"
)

func TestRequestLogger_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: &buf})

	req := httptest.NewRequest(http.MethodPost, "/quotes/q1/editor/save", nil)
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec

	if err := RequestLogger(log)(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["method"] != "POST" {
		t.Errorf("method = %v, want POST", entry["method"])
	}
	if entry["path"] != "/quotes/q1/editor/save" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["message"] != "request handled" {
		t.Errorf("message = %v", entry["message"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected duration_ms field")
	}
}

func TestRequestLogger_ContextCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "info", Output: &buf})

	req := httptest.NewRequest(http.MethodGet, "/quotes/q1/editor", nil)
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = httptest.NewRecorder()

	if err := RequestLogger(log)(e); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("debug line should be filtered at info level, got %q", buf.String())
	}

	log.Info(e.Request.Context(), "inside handler")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["path"] != "/quotes/q1/editor" {
		t.Errorf("path = %v, want it inherited from the request context", entry["path"])
	}
}
