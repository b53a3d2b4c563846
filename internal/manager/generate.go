package manager

import (
	"context"

	"flamed/internal/llm"
	"flamed/pkg/types"
)

// Generate runs a non-streaming request against modelID, or the default
// model when modelID is empty.
func (m *Manager) Generate(ctx context.Context, modelID string, req types.GenerateRequest) (types.GenerateResponse, error) {
	var resp types.GenerateResponse
	err := m.withInstance(ctx, modelID, req, func(gen *llm.TextGeneration) error {
		var err error
		resp, err = gen.Generate(ctx, req.Inputs, req.Parameters)
		return err
	})
	return resp, err
}

// GenerateStream runs a streaming request, handing every event to emit.
// Nothing is emitted for a request that fails validation or admission.
func (m *Manager) GenerateStream(ctx context.Context, modelID string, req types.GenerateRequest, emit func(types.StreamResponse) error) error {
	return m.withInstance(ctx, modelID, req, func(gen *llm.TextGeneration) error {
		return gen.GenerateStream(ctx, req.Inputs, req.Parameters, emit)
	})
}

// withInstance resolves and loads the instance, validates the request
// before it takes a queue slot, and runs fn while admitted.
func (m *Manager) withInstance(ctx context.Context, modelID string, req types.GenerateRequest, fn func(*llm.TextGeneration) error) (err error) {
	label := "unknown"
	defer func() {
		generationRequestsTotal.WithLabelValues(label, outcome(err)).Inc()
	}()

	modelID, err = m.resolveModel(modelID)
	if err != nil {
		return err
	}
	if _, ok := m.getModelByID(modelID); !ok {
		return ErrModelNotFound(modelID)
	}
	label = modelID

	if err = m.EnsureInstance(ctx, modelID); err != nil {
		return err
	}
	m.mu.RLock()
	inst := m.instances[modelID]
	var gen *llm.TextGeneration
	if inst != nil {
		gen = inst.gen
	}
	m.mu.RUnlock()
	if gen == nil {
		return ErrDependencyUnavailable("model " + modelID + " is not loaded")
	}

	if err = gen.Validate(req.Inputs, req.Parameters); err != nil {
		return err
	}

	release, err := m.beginGeneration(ctx, modelID)
	if err != nil {
		if IsTooBusy(err) {
			m.publisher.Publish(Event{Name: "backpressure", ModelID: modelID, Fields: map[string]any{"reason": TooBusyReason(err)}})
		}
		return err
	}
	defer release()

	err = fn(gen)
	if err != nil && !llm.IsCancelled(err) && !llm.IsValidation(err) {
		m.log.Warn().Err(err).Str("model", modelID).Msg("generation failed")
	}
	return err
}
