package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skillwave/skillwave-backend/pkg/logger"
)

func TestLoggingRecordsHandlerStatus(t *testing.T) {
	var logOutput bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &logOutput})

	mw := Logging(logg)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/nope", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status to pass through, got %d", resp.Code)
	}
	logged := logOutput.String()
	if !strings.Contains(logged, "request.complete") {
		t.Fatalf("expected completion log line, got %q", logged)
	}
	if !strings.Contains(logged, `"status":404`) {
		t.Fatalf("expected status 404 in log, got %q", logged)
	}
}

func TestLoggingDefaultsToOKWhenUnset(t *testing.T) {
	var logOutput bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &logOutput})

	mw := Logging(logg)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coupons", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(logOutput.String(), `"status":200`) {
		t.Fatalf("expected implicit 200 in log, got %q", logOutput.String())
	}
}

func TestLoggingNilLoggerPassesThrough(t *testing.T) {
	mw := Logging(nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through without logger, got %d", resp.Code)
	}
}
