package manager

import "context"

// Preload kicks off a background load of modelID (or the default model) and
// returns immediately. Callers can poll Status() to observe state transitions.
func (m *Manager) Preload(modelID string) error {
	modelID, err := m.resolveModel(modelID)
	if err != nil {
		return err
	}
	if _, ok := m.getModelByID(modelID); !ok {
		return ErrModelNotFound(modelID)
	}
	go func() {
		// Detached context so the load outlives the caller.
		if err := m.EnsureInstance(context.Background(), modelID); err != nil {
			m.log.Warn().Err(err).Str("model", modelID).Msg("preload failed")
		}
	}()
	return nil
}
