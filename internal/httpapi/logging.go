package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, request logging is off.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("FLAMED_LOG_LEVEL"))

// SetDefaultLogLevel overrides the environment default, e.g. from config.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLogger emits the start/end lines of one generation request.
type requestLogger struct {
	r     *http.Request
	lvl   LogLevel
	model string
	start time.Time
}

func newRequestLogger(r *http.Request, model string) *requestLogger {
	return &requestLogger{r: r, lvl: requestLogLevel(r), model: model, start: time.Now()}
}

// event returns a log event tagged with the request, or nil (a no-op for
// zerolog) when the request's level is below need.
func (l *requestLogger) event(need LogLevel) *zerolog.Event {
	if zlog == nil || l.lvl < need {
		return nil
	}
	var e *zerolog.Event
	switch need {
	case LevelError:
		e = zlog.Error()
	case LevelDebug:
		e = zlog.Debug()
	default:
		e = zlog.Info()
	}
	e = e.Str("path", l.r.URL.Path).Str("model", l.model)
	if rid := middleware.GetReqID(l.r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e
}

func (l *requestLogger) begin() {
	l.event(LevelInfo).Msg("generate start")
}

// end logs the outcome; failures are logged from LevelError up.
func (l *requestLogger) end(status int, err error) {
	need := LevelInfo
	if status >= http.StatusInternalServerError {
		need = LevelError
	}
	e := l.event(need)
	if e == nil {
		return
	}
	e = e.Int("status", status).Dur("dur", time.Since(l.start))
	if err != nil {
		e = e.Err(err)
	}
	e.Msg("generate end")
}

// token logs one streamed token at debug level.
func (l *requestLogger) token(id int, text string) {
	l.event(LevelDebug).Int("id", id).Str("text", text).Msg("stream>")
}
