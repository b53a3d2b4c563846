package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"flamed/internal/llm"
	"flamed/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	state        State
	err          string
	registry     []types.Model
	defaultModel string
	instances    map[string]*Instance
	loadsTotal   uint64
	// loads collapses concurrent EnsureInstance calls for one model.
	loads singleflight.Group

	// Admission config
	maxQueueDepth int
	maxConcurrent int
	maxWait       time.Duration
	drainTimeout  time.Duration

	limits    llm.Limits
	version   string
	log       zerolog.Logger
	publisher EventPublisher
	loader    LoaderFunc
	startTime time.Time
}

func New(reg []types.Model, defaultModel string) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		DefaultModel: defaultModel,
	})
}

// Ready reports whether at least one instance can serve requests.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, inst := range m.instances {
		if inst.State == StateReady {
			return true
		}
	}
	return false
}

func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// DefaultModel returns the model used when a request names none.
func (m *Manager) DefaultModel() string { return m.defaultModel }

// Limits returns the request limits every instance validates against.
func (m *Manager) Limits() llm.Limits { return m.limits }

// getModelByID finds a model in the registry.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// resolveModel applies the default model to an empty id.
func (m *Manager) resolveModel(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if m.defaultModel == "" {
		return "", ErrModelNotFound("(unspecified)")
	}
	return m.defaultModel, nil
}
