package httpapi

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("shorthand query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	SetDefaultLogLevel("info")
	defer SetDefaultLogLevel("")
	r = httptest.NewRequest("GET", "/x", nil)
	if got := requestLogLevel(r); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestRequestLogger_Lines(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer func() { zlog = nil }()

	r := httptest.NewRequest("POST", "/generate?log=debug", nil)
	l := newRequestLogger(r, "tiny")
	l.begin()
	l.token(98, "b")
	l.end(422, errors.New("Input validation error"))

	out := buf.String()
	for _, want := range []string{`"message":"generate start"`, `"message":"stream>"`, `"text":"b"`, `"status":422`, `"model":"tiny"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %q", want, out)
		}
	}
}

func TestRequestLogger_ErrorLevelOnlyLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	r := httptest.NewRequest("POST", "/generate?log=error", nil)
	l := newRequestLogger(r, "tiny")
	l.begin()
	l.end(200, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output at error level, got %q", buf.String())
	}
	l.end(503, errors.New("unavailable"))
	if !strings.Contains(buf.String(), `"status":503`) {
		t.Fatalf("failure not logged: %q", buf.String())
	}
}

func TestRequestLogger_NoLogger(t *testing.T) {
	zlog = nil
	l := newRequestLogger(httptest.NewRequest("POST", "/generate?log=debug", nil), "m")
	// Must not panic without a logger
	l.begin()
	l.token(1, "x")
	l.end(200, nil)
}
