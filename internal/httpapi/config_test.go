package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetRequestTimeoutSeconds_NormalizesNegativeToZero(t *testing.T) {
	SetRequestTimeoutSeconds(-5)
	if requestTimeout != 0 || requestTimeoutDuration() != 0 {
		t.Fatalf("expected 0, got %d", requestTimeout)
	}
	SetRequestTimeoutSeconds(3)
	defer SetRequestTimeoutSeconds(0)
	if requestTimeoutDuration() != 3*time.Second {
		t.Fatalf("expected 3s, got %v", requestTimeoutDuration())
	}
}

func TestCORSMiddleware(t *testing.T) {
	SetCORSOptions(false, nil, nil, nil)
	if corsMiddleware() != nil {
		t.Fatalf("expected no middleware when disabled")
	}

	SetCORSOptions(true, []string{"https://example.com"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	mw := corsMiddleware()
	if mw == nil {
		t.Fatalf("expected middleware when enabled")
	}
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("allow-origin=%q", got)
	}
}
