package manager

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"flamed/internal/llm"
)

// EnsureInstance makes sure modelID has a ready instance, building its backend
// on first use. Concurrent calls for one model share a single load; a caller
// whose context ends stops waiting but does not abort the load.
func (m *Manager) EnsureInstance(ctx context.Context, modelID string) error {
	modelID, err := m.resolveModel(modelID)
	if err != nil {
		return err
	}

	m.mu.RLock()
	instReady, ok := m.instances[modelID]
	m.mu.RUnlock()
	if ok && instReady.State == StateReady {
		m.mu.Lock()
		if inst2, ok2 := m.instances[modelID]; ok2 && inst2.State == StateReady {
			inst2.LastUsed = time.Now()
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()
		// If state changed in between, continue with ensure path
	}

	if _, ok := m.getModelByID(modelID); !ok {
		return ErrModelNotFound(modelID)
	}

	ch := m.loads.DoChan(modelID, func() (any, error) {
		return nil, m.load(modelID)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load builds the backend of modelID and publishes the instance.
func (m *Manager) load(modelID string) error {
	mdl, _ := m.getModelByID(modelID)
	start := time.Now()

	m.mu.Lock()
	inst, existed := m.instances[modelID]
	if existed && inst.State == StateReady {
		m.mu.Unlock()
		return nil
	}
	if !existed {
		inst = &Instance{
			ID:      modelID,
			Model:   mdl,
			queueCh: make(chan struct{}, m.maxQueueDepth),
			sem:     semaphore.NewWeighted(int64(m.maxConcurrent)),
		}
		m.instances[modelID] = inst
	}
	inst.State = StateLoading
	inst.Err = ""
	inst.LastUsed = time.Now()
	m.state = StateLoading
	m.err = ""
	m.mu.Unlock()
	m.publisher.Publish(Event{Name: "ensure_start", ModelID: modelID, Fields: map[string]any{"backend": mdl.Backend, "tokenizer": mdl.Tokenizer}})
	m.log.Info().Str("model", modelID).Str("backend", mdl.Backend).Msg("loading model")

	loaded, err := m.loader(mdl)
	if err != nil {
		m.mu.Lock()
		inst.State = StateError
		inst.Err = err.Error()
		m.state = StateError
		m.err = err.Error()
		m.mu.Unlock()
		m.publisher.Publish(Event{Name: "ensure_error", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
		m.log.Error().Err(err).Str("model", modelID).Msg("model load failed")
		return ErrDependencyUnavailable(err.Error())
	}

	gen := llm.NewTextGeneration(loaded.Model, loaded.Tokenizer, m.limits,
		llm.WithLogger(m.log.With().Str("model", modelID).Logger()),
		llm.WithObserver(observer(modelID)),
	)

	m.mu.Lock()
	inst.gen = gen
	inst.State = StateReady
	inst.LastUsed = time.Now()
	m.state = StateReady
	m.err = ""
	m.loadsTotal++
	m.mu.Unlock()
	elapsed := time.Since(start)
	m.publisher.Publish(Event{Name: "ensure_ready", ModelID: modelID, Fields: map[string]any{"vocab_size": loaded.VocabSize, "duration_ms": elapsed.Milliseconds()}})
	m.log.Info().Str("model", modelID).Int("vocab_size", loaded.VocabSize).Dur("took", elapsed).Msg("model ready")
	return nil
}
