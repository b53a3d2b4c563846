package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flamed/internal/llm"
	"flamed/internal/llm/backend"
	"flamed/pkg/types"
)

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

func ptr[T any](v T) *T { return &v }

// dummyLoader builds the dummy model over the byte tokenizer regardless of
// the descriptor, so no files are needed.
func dummyLoader(types.Model) (*backend.Loaded, error) {
	tok := backend.NewBytes()
	return &backend.Loaded{Model: backend.NewDummy(tok.VocabSize()), Tokenizer: tok, VocabSize: tok.VocabSize()}, nil
}

func failingLoader(types.Model) (*backend.Loaded, error) {
	return nil, errors.New("corpus missing")
}

// blockingModel holds every query until release is closed.
type blockingModel struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	inner   llm.Model
}

func newBlockingModel() *blockingModel {
	return &blockingModel{
		started: make(chan struct{}),
		release: make(chan struct{}),
		inner:   backend.NewDummy(backend.NewBytes().VocabSize()),
	}
}

func (b *blockingModel) NextLogits(ctx context.Context, tokens []int) ([]float32, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.inner.NextLogits(ctx, tokens)
}

func (b *blockingModel) loader(types.Model) (*backend.Loaded, error) {
	tok := backend.NewBytes()
	return &backend.Loaded{Model: b, Tokenizer: tok, VocabSize: tok.VocabSize()}, nil
}

func newTestManager(cfg ManagerConfig) *Manager {
	if cfg.Registry == nil {
		cfg.Registry = []types.Model{{ID: "m", Backend: backend.ModelDummy}}
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "m"
	}
	if cfg.Loader == nil {
		cfg.Loader = dummyLoader
	}
	return NewWithConfig(cfg)
}
