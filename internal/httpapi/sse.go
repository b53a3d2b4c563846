package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"flamed/pkg/types"
)

// sseWriter writes server-sent events. Headers go out with the first event so
// a request that fails before streaming can still get a plain JSON error.
type sseWriter struct {
	w       http.ResponseWriter
	flush   func()
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	s := &sseWriter{w: w, flush: func() {}}
	if f, ok := w.(http.Flusher); ok {
		s.flush = f.Flush
	}
	return s
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *sseWriter) write(event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.start()
	var buf bytes.Buffer
	if event != "" {
		buf.WriteString("event: ")
		buf.WriteString(event)
		buf.WriteByte('\n')
	}
	buf.WriteString("data: ")
	buf.Write(b)
	buf.WriteString("\n\n")
	_, err = s.w.Write(buf.Bytes())
	s.flush()
	return err
}

// send writes one token event; the last one carries generated_text.
func (s *sseWriter) send(ev types.StreamResponse) error {
	kind := "token"
	if ev.GeneratedText != nil {
		kind = "final"
	}
	sseEventsTotal.WithLabelValues(kind).Inc()
	return s.write("", ev)
}

// sendError terminates a started stream with an error event.
func (s *sseWriter) sendError(e types.ErrorResponse) error {
	sseEventsTotal.WithLabelValues("error").Inc()
	return s.write("error", e)
}
