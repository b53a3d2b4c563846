package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"flamed/internal/llm/backend"
	"flamed/internal/manager"
	"flamed/pkg/types"
)

// newDummyManager serves one dummy model over the byte tokenizer.
func newDummyManager(t *testing.T, cfg manager.ManagerConfig) *manager.Manager {
	t.Helper()
	cfg.Registry = []types.Model{{ID: "tiny", Backend: backend.ModelDummy, Tokenizer: backend.TokenizerBytes}}
	cfg.DefaultModel = "tiny"
	m := manager.NewWithConfig(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_GenerateEndToEnd(t *testing.T) {
	h := NewMux(newDummyManager(t, manager.ManagerConfig{}))
	w := postJSON(t, h, "/generate", `{"inputs":"a","parameters":{"max_new_tokens":3,"details":true,"decoder_input_details":true}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.GeneratedText != "bcd" {
		t.Fatalf("generated %q", resp.GeneratedText)
	}
	d := resp.Details
	if d == nil || d.FinishReason != types.FinishLength || len(d.Tokens) != 3 || len(d.Prefill) != 1 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if d.Prefill[0].Logprob != nil {
		t.Fatalf("first prefill token must have no logprob")
	}
}

func TestManager_StreamEndToEnd(t *testing.T) {
	h := NewMux(newDummyManager(t, manager.ManagerConfig{}))
	w := postJSON(t, h, "/model/tiny/", `{"inputs":"a","stream":true,"parameters":{"max_new_tokens":2,"return_full_text":true}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	chunks := strings.Split(strings.TrimSuffix(w.Body.String(), "\n\n"), "\n\n")
	if len(chunks) != 2 {
		t.Fatalf("events=%d body=%q", len(chunks), w.Body.String())
	}
	var last types.StreamResponse
	if err := json.Unmarshal([]byte(strings.TrimPrefix(chunks[1], "data: ")), &last); err != nil {
		t.Fatalf("json: %v", err)
	}
	if last.GeneratedText == nil || *last.GeneratedText != "abc" {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestManager_ValidationAndUnknownModel(t *testing.T) {
	h := NewMux(newDummyManager(t, manager.ManagerConfig{}))
	w := postJSON(t, h, "/generate", `{"inputs":"","parameters":{"best_of":2}}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if er := decodeError(t, w); er.ErrorType != "validation" || !strings.HasPrefix(er.Error, "Input validation error") {
		t.Fatalf("unexpected error: %+v", er)
	}
	w = postJSON(t, h, "/model/nope/", `{"inputs":"a"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestManager_InfoAndHealth(t *testing.T) {
	m := newDummyManager(t, manager.ManagerConfig{MaxConcurrent: 3, Version: "test"})
	h := NewMux(m)
	w := httpGet(h, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("health before load: status=%d", w.Code)
	}
	if w := postJSON(t, h, "/generate", `{"inputs":"a","parameters":{"max_new_tokens":1}}`); w.Code != http.StatusOK {
		t.Fatalf("generate status=%d", w.Code)
	}
	if w := httpGet(h, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health after load: status=%d", w.Code)
	}
	w = httpGet(h, "/info")
	var info types.Info
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("json: %v", err)
	}
	if info.ModelID != "tiny" || info.MaxConcurrentRequests != 3 || info.Version != "test" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ModelPipelineTag == nil || *info.ModelPipelineTag != "text-generation" {
		t.Fatalf("pipeline tag: %+v", info.ModelPipelineTag)
	}
}

// gatedModel holds every query until release is closed.
type gatedModel struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedModel) NextLogits(ctx context.Context, tokens []int) ([]float32, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return backend.NewDummy(backend.NewBytes().VocabSize()).NextLogits(ctx, tokens)
}

func TestManager_Overloaded(t *testing.T) {
	g := &gatedModel{started: make(chan struct{}), release: make(chan struct{})}
	loader := func(types.Model) (*backend.Loaded, error) {
		tok := backend.NewBytes()
		return &backend.Loaded{Model: g, Tokenizer: tok, VocabSize: tok.VocabSize()}, nil
	}
	m := newDummyManager(t, manager.ManagerConfig{MaxQueueDepth: 1, MaxConcurrent: 1, MaxWait: 20 * time.Millisecond, Loader: loader})
	h := NewMux(m)

	done := make(chan int, 1)
	go func() {
		w := postJSON(t, h, "/generate", `{"inputs":"a","parameters":{"max_new_tokens":2}}`)
		done <- w.Code
	}()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first request never reached the model")
	}

	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	w := postJSON(t, h, "/generate", `{"inputs":"a","parameters":{"max_new_tokens":1}}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d", w.Code)
	}
	if er := decodeError(t, w); er.ErrorType != "overloaded" {
		t.Fatalf("unexpected error: %+v", er)
	}
	if after := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full")); after != before+1 {
		t.Fatalf("queue_full backpressure: before=%v after=%v", before, after)
	}
	close(g.release)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("first request status=%d", code)
	}
}
